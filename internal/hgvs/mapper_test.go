package hgvs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

func TestMapToCdna_ForwardCoding(t *testing.T) {
	tr := createForwardTranscript()

	tests := []struct {
		name string
		pos  int64
		want CdnaCoord
		str  string
	}{
		{"upstream of first exon", 90, CdnaCoord{-50, -10, CdnaStartCodon}, "-50-10"},
		{"first base of transcript", 100, CdnaCoord{-50, 0, CdnaStartCodon}, "-50"},
		{"last 5' UTR base", 149, CdnaCoord{-1, 0, CdnaStartCodon}, "-1"},
		{"first coding base", 150, CdnaCoord{1, 0, CdnaStartCodon}, "1"},
		{"last base of exon 1", 200, CdnaCoord{51, 0, CdnaStartCodon}, "51"},
		{"intron 1 donor side", 201, CdnaCoord{51, 1, CdnaStartCodon}, "51+1"},
		{"intron 1 midpoint tie goes to first exon", 250, CdnaCoord{51, 50, CdnaStartCodon}, "51+50"},
		{"intron 1 acceptor side", 251, CdnaCoord{52, -49, CdnaStartCodon}, "52-49"},
		{"base before exon 2", 299, CdnaCoord{52, -1, CdnaStartCodon}, "52-1"},
		{"first base of exon 2", 300, CdnaCoord{52, 0, CdnaStartCodon}, "52"},
		{"last base of exon 2", 400, CdnaCoord{152, 0, CdnaStartCodon}, "152"},
		{"last coding base", 548, CdnaCoord{201, 0, CdnaStartCodon}, "201"},
		{"first 3' UTR base", 549, CdnaCoord{1, 0, CdnaStopCodon}, "*1"},
		{"last base of transcript", 600, CdnaCoord{52, 0, CdnaStopCodon}, "*52"},
		{"downstream of last exon", 610, CdnaCoord{52, 10, CdnaStopCodon}, "*52+10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToCdna(tr, tt.pos)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}

func TestMapToCdna_ReverseCoding(t *testing.T) {
	tr := createReverseTranscript()

	tests := []struct {
		name string
		pos  int64
		want CdnaCoord
		str  string
	}{
		{"upstream of transcript start", 1510, CdnaCoord{-50, -10, CdnaStartCodon}, "-50-10"},
		{"first base of transcript", 1500, CdnaCoord{-50, 0, CdnaStartCodon}, "-50"},
		{"last 5' UTR base", 1451, CdnaCoord{-1, 0, CdnaStartCodon}, "-1"},
		{"first coding base", 1450, CdnaCoord{1, 0, CdnaStartCodon}, "1"},
		{"last base of exon 1", 1400, CdnaCoord{51, 0, CdnaStartCodon}, "51"},
		{"intron 1 donor side", 1399, CdnaCoord{51, 1, CdnaStartCodon}, "51+1"},
		{"intron 1 midpoint tie goes to first exon in list", 1350, CdnaCoord{52, -50, CdnaStartCodon}, "52-50"},
		{"intron 1 acceptor side", 1301, CdnaCoord{52, -1, CdnaStartCodon}, "52-1"},
		{"first base of exon 2", 1300, CdnaCoord{52, 0, CdnaStartCodon}, "52"},
		{"last base of exon 2", 1200, CdnaCoord{152, 0, CdnaStartCodon}, "152"},
		{"intron 2 donor side", 1199, CdnaCoord{152, 1, CdnaStartCodon}, "152+1"},
		{"intron 2 acceptor side", 1101, CdnaCoord{153, -1, CdnaStartCodon}, "153-1"},
		{"last coding base", 1052, CdnaCoord{201, 0, CdnaStartCodon}, "201"},
		{"first 3' UTR base", 1051, CdnaCoord{1, 0, CdnaStopCodon}, "*1"},
		{"last base of transcript", 1000, CdnaCoord{52, 0, CdnaStopCodon}, "*52"},
		{"downstream of transcript end", 990, CdnaCoord{52, 10, CdnaStopCodon}, "*52+10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToCdna(tr, tt.pos)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}

func TestMapToCdna_NonCoding(t *testing.T) {
	tests := []struct {
		name   string
		strand int8
		pos    int64
		want   CdnaCoord
	}{
		{"forward first base", 1, 5000, CdnaCoord{1, 0, TranscriptStart}},
		{"forward upstream", 1, 4990, CdnaCoord{1, -10, TranscriptStart}},
		{"forward exon 1 end", 1, 5100, CdnaCoord{101, 0, TranscriptStart}},
		{"forward intron donor", 1, 5101, CdnaCoord{101, 1, TranscriptStart}},
		{"forward intron acceptor", 1, 5199, CdnaCoord{102, -1, TranscriptStart}},
		{"forward last base", 1, 5300, CdnaCoord{202, 0, TranscriptStart}},
		{"forward downstream", 1, 5305, CdnaCoord{202, 5, TranscriptStart}},
		{"reverse first base", -1, 5300, CdnaCoord{1, 0, TranscriptStart}},
		{"reverse upstream", -1, 5310, CdnaCoord{1, -10, TranscriptStart}},
		{"reverse exon 1 end", -1, 5200, CdnaCoord{101, 0, TranscriptStart}},
		{"reverse intron donor", -1, 5199, CdnaCoord{101, 1, TranscriptStart}},
		{"reverse intron acceptor", -1, 5101, CdnaCoord{102, -1, TranscriptStart}},
		{"reverse last base", -1, 5000, CdnaCoord{202, 0, TranscriptStart}},
		{"reverse downstream", -1, 4990, CdnaCoord{202, 10, TranscriptStart}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := createNonCodingTranscript(tt.strand)
			assert.Equal(t, tt.want, MapToCdna(tr, tt.pos))
		})
	}
}

func TestMapToCdna_IntronicUTR(t *testing.T) {
	// Forward transcript whose first exon is entirely 5' UTR and whose last
	// exon is entirely 3' UTR.
	tr := &cache.Transcript{
		ID:     "ENST05",
		Strand: 1,
		Exons: []cache.Exon{
			{Start: 100, End: 120},
			{Start: 200, End: 300},
			{Start: 400, End: 420},
		},
	}
	tr.AnnotateCoding(210, 290, 0)

	assert.Equal(t, "-11+5", MapToCdna(tr, 125).String(), "5' UTR intron")
	assert.Equal(t, "-10-5", MapToCdna(tr, 195).String(), "5' UTR intron, acceptor side")
	assert.Equal(t, "*10+5", MapToCdna(tr, 305).String(), "3' UTR intron")
	assert.Equal(t, "*11-5", MapToCdna(tr, 395).String(), "3' UTR intron, acceptor side")
}

func TestMapToCdna_CodingExonBodyIsMonotonic(t *testing.T) {
	for _, tr := range []*cache.Transcript{createForwardTranscript(), createReverseTranscript()} {
		t.Run(tr.ID, func(t *testing.T) {
			var prev int64
			step := int64(1)
			from, to := tr.CDSStart, tr.CDSEnd
			if tr.IsReverseStrand() {
				from, to, step = tr.CDSEnd, tr.CDSStart, -1
			}
			for pos := from; pos != to+step; pos += step {
				if tr.FindExon(pos) == nil {
					continue
				}
				c := MapToCdna(tr, pos)
				require.Zero(t, c.Offset, "pos %d", pos)
				require.Equal(t, CdnaStartCodon, c.Landmark, "pos %d", pos)
				require.Greater(t, c.Position, prev, "pos %d", pos)
				prev = c.Position
			}
			assert.Equal(t, int64(201), prev)
		})
	}
}

func TestMapToCdna_ExonBoundaryConsistency(t *testing.T) {
	for _, tr := range []*cache.Transcript{createForwardTranscript(), createReverseTranscript(), createNonCodingTranscript(-1)} {
		t.Run(tr.ID, func(t *testing.T) {
			for i := range tr.Exons {
				e := &tr.Exons[i]
				for _, pos := range []int64{e.Start, e.End} {
					assert.Equal(t, mapFromExon(tr, e, pos), MapToCdna(tr, pos), "pos %d", pos)
				}
			}
			// Bases either side of each splice junction are adjacent in cDNA.
			for i := 0; i+1 < len(tr.Exons); i++ {
				left := cdnaPosition(tr, tr.Exons[i].End)
				right := cdnaPosition(tr, tr.Exons[i+1].Start)
				assert.Equal(t, int64(1), abs(right-left), "junction %d", i)
			}
		})
	}
}

func TestCdnaPosition(t *testing.T) {
	fwd := createForwardTranscript()
	assert.Equal(t, int64(1), cdnaPosition(fwd, 100))
	assert.Equal(t, int64(101), cdnaPosition(fwd, 200))
	assert.Equal(t, int64(102), cdnaPosition(fwd, 300))
	assert.Equal(t, int64(303), cdnaPosition(fwd, 600))

	rev := createReverseTranscript()
	assert.Equal(t, int64(1), cdnaPosition(rev, 1500))
	assert.Equal(t, int64(102), cdnaPosition(rev, 1300))
	assert.Equal(t, int64(303), cdnaPosition(rev, 1000))
}

func TestCdnaPosition_OutsideExonsPanics(t *testing.T) {
	fwd := createForwardTranscript()
	assert.Panics(t, func() { cdnaPosition(fwd, 250) }, "intronic")
	assert.Panics(t, func() { cdnaPosition(fwd, 700) }, "past the last exon")

	rev := createReverseTranscript()
	assert.Panics(t, func() { cdnaPosition(rev, 1350) }, "intronic")
	assert.Panics(t, func() { cdnaPosition(rev, 900) }, "past the last exon")
}

func TestMapToCdna_NoExonsPanics(t *testing.T) {
	assert.Panics(t, func() { MapToCdna(&cache.Transcript{ID: "empty", Strand: 1}, 100) })
}

func TestNearestExon(t *testing.T) {
	tr := createForwardTranscript()
	assert.Equal(t, 0, nearestExon(tr, 50))
	assert.Equal(t, 0, nearestExon(tr, 250), "tie")
	assert.Equal(t, 1, nearestExon(tr, 251))
	assert.Equal(t, 1, nearestExon(tr, 350))
	assert.Equal(t, 2, nearestExon(tr, 10000))
}

func TestCdnaCoord_String(t *testing.T) {
	tests := []struct {
		c    CdnaCoord
		want string
	}{
		{CdnaCoord{76, 0, CdnaStartCodon}, "76"},
		{CdnaCoord{88, 1, CdnaStartCodon}, "88+1"},
		{CdnaCoord{89, -2, CdnaStartCodon}, "89-2"},
		{CdnaCoord{-14, 0, CdnaStartCodon}, "-14"},
		{CdnaCoord{-14, 3, CdnaStartCodon}, "-14+3"},
		{CdnaCoord{6, 0, CdnaStopCodon}, "*6"},
		{CdnaCoord{6, -2, CdnaStopCodon}, "*6-2"},
		{CdnaCoord{120, 0, TranscriptStart}, "120"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.String())
	}
}

func TestLandmark_String(t *testing.T) {
	assert.Equal(t, "TRANSCRIPT_START", TranscriptStart.String())
	assert.Equal(t, "CDNA_START_CODON", CdnaStartCodon.String())
	assert.Equal(t, "CDNA_STOP_CODON", CdnaStopCodon.String())
	assert.Equal(t, "Landmark(7)", Landmark(7).String())
}
