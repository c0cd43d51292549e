package hgvs

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// createForwardTranscript returns a coding transcript on the forward strand.
//
//	exons   100-200  300-400  500-600
//	CDS     150 ............. 548
//	cDNA    1-101    102-202  203-303   (coding 51-251)
func createForwardTranscript() *cache.Transcript {
	t := &cache.Transcript{
		ID:        "ENST01",
		GeneID:    "ENSG01",
		GeneName:  "GENE1",
		ProteinID: "ENSP01",
		Chrom:     "1",
		Start:     100,
		End:       600,
		Strand:    1,
		Exons: []cache.Exon{
			{Start: 100, End: 200},
			{Start: 300, End: 400},
			{Start: 500, End: 600},
		},
	}
	t.NumberExons()
	t.AnnotateCoding(150, 548, 0)
	return t
}

// createReverseTranscript returns a coding transcript on the reverse strand,
// the mirror image of createForwardTranscript.
//
//	exons   1000-1100  1200-1300  1400-1500
//	CDS        1052 ............. 1450
//	cDNA    203-303    102-202    1-101     (coding 51-251)
func createReverseTranscript() *cache.Transcript {
	t := &cache.Transcript{
		ID:        "ENST02",
		GeneID:    "ENSG02",
		GeneName:  "GENE2",
		ProteinID: "ENSP02",
		Chrom:     "1",
		Start:     1000,
		End:       1500,
		Strand:    -1,
		Exons: []cache.Exon{
			{Start: 1000, End: 1100},
			{Start: 1200, End: 1300},
			{Start: 1400, End: 1500},
		},
	}
	t.NumberExons()
	t.AnnotateCoding(1052, 1450, 0)
	return t
}

// createNonCodingTranscript returns a two-exon non-coding transcript on chr2.
func createNonCodingTranscript(strand int8) *cache.Transcript {
	t := &cache.Transcript{
		ID:     "ENST03",
		GeneID: "ENSG03",
		Chrom:  "2",
		Start:  5000,
		End:    5300,
		Strand: strand,
		Exons: []cache.Exon{
			{Start: 5000, End: 5100},
			{Start: 5200, End: 5300},
		},
	}
	t.NumberExons()
	t.AnnotateCoding(0, 0, 0)
	return t
}

// createUnconfirmedStartTranscript returns a forward transcript whose CDS
// starts mid-codon (phase 2) without a confirmed start codon.
func createUnconfirmedStartTranscript() *cache.Transcript {
	t := &cache.Transcript{
		ID:               "ENST04",
		GeneID:           "ENSG04",
		Chrom:            "1",
		Start:            7000,
		End:              7300,
		Strand:           1,
		UnconfirmedStart: true,
		Exons: []cache.Exon{
			{Start: 7000, End: 7100},
			{Start: 7200, End: 7300},
		},
	}
	t.NumberExons()
	t.AnnotateCoding(7000, 7250, 2)
	return t
}

func geneOf(t *cache.Transcript) *cache.Gene {
	g := &cache.Gene{ID: t.GeneID, Name: t.GeneName, Chrom: t.Chrom, Strand: t.Strand}
	g.AddTranscript(t)
	return g
}

// testGenome returns a reference where position p holds "ACGT"[(p-1)%4],
// with two poly-T runs: chr1:320-324 (forward exon 2) and chr1:1250-1253
// (reverse exon 2).
func testGenome() *fakeSequences {
	chr1 := []byte(strings.Repeat("ACGT", 500))
	copy(chr1[319:], "TTTTT")
	copy(chr1[1249:], "TTTT")
	return &fakeSequences{chroms: map[string]string{
		"1": string(chr1),
		"2": strings.Repeat("ACGT", 2000),
	}}
}

type fakeSequences struct {
	chroms map[string]string
	calls  int
	err    error
}

func (f *fakeSequences) FetchSequence(chrom string, start, end int64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	s, ok := f.chroms[strings.TrimPrefix(chrom, "chr")]
	if !ok || start < 1 || end > int64(len(s)) {
		return "", fmt.Errorf("no sequence for %s:%d-%d", chrom, start, end)
	}
	return s[start-1 : end], nil
}

func (f *fakeSequences) base(chrom string, pos int64) string {
	return f.chroms[chrom][pos-1 : pos]
}
