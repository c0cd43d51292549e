package hgvs

import (
	"strings"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// unknownAminoAcid marks a protein whose first codon is incomplete.
const unknownAminoAcid = "X"

// IsCoding reports whether the transcript has a coding region.
func IsCoding(t *cache.Transcript) bool {
	return t.CDNACodingEnd != 0
}

// OnlySpansCodingSequence reports whether both ends of the variant fall on
// exon bodies and the exon nearest the start also contains the end.
func OnlySpansCodingSequence(v vcf.Variant, t *cache.Transcript) bool {
	if len(t.Exons) == 0 {
		return false
	}
	if MapToCdna(t, v.Start).Offset != 0 || MapToCdna(t, v.End).Offset != 0 {
		return false
	}
	e := &t.Exons[nearestExon(t, v.Start)]
	return v.End >= e.Start && v.End <= e.End
}

// FirstCodingExonPhase returns the phase of the first coding exon in
// transcript order, or -1 if no exon is coding.
func FirstCodingExonPhase(t *cache.Transcript) int {
	n := len(t.Exons)
	for i := range n {
		e := &t.Exons[i]
		if t.IsReverseStrand() {
			e = &t.Exons[n-1-i]
		}
		if e.Phase != -1 {
			return e.Phase
		}
	}
	return -1
}

// AminoAcidPosition converts a 1-based CDS position to a 1-based codon index.
func AminoAcidPosition(cdsPosition int64, t *cache.Transcript) int64 {
	return (adjustCdsPosition(cdsPosition, t)-1)/3 + 1
}

// PhaseShift returns the 0-based position of a CDS base within its codon.
func PhaseShift(cdsPosition int64, t *cache.Transcript) int {
	return int((adjustCdsPosition(cdsPosition, t) - 1) % 3)
}

// adjustCdsPosition compensates for a partial leading codon on transcripts
// whose start codon is not confirmed.
func adjustCdsPosition(cdsPosition int64, t *cache.Transcript) int64 {
	if t.UnconfirmedStart || strings.HasPrefix(t.ProteinSequence, unknownAminoAcid) {
		if phase := FirstCodingExonPhase(t); phase != -1 {
			cdsPosition -= int64(phase)
		}
	}
	return cdsPosition
}
