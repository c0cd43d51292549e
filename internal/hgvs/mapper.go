package hgvs

import (
	"fmt"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// genomicZone classifies an exon anchor against the genomic coding bounds.
type genomicZone int

const (
	zoneBeforeCoding genomicZone = iota // anchor < genomic coding start
	zoneCoding
	zoneAfterCoding // anchor > genomic coding end
)

// zoneFunc returns the reference position and landmark for an exonic anchor.
type zoneFunc func(t *cache.Transcript, e *cache.Exon, anchor int64) (int64, Landmark)

// zoneTable selects the coordinate rule for a coding transcript by
// [strand][zone]. Genomic "before coding" is the 5' UTR on the forward
// strand and the 3' UTR on the reverse strand.
var zoneTable = [2][3]zoneFunc{
	{utr5, cdsForward, utr3},
	{utr3, cdsReverse, utr5},
}

func utr5(t *cache.Transcript, _ *cache.Exon, anchor int64) (int64, Landmark) {
	return cdnaPosition(t, anchor) - t.CDNACodingStart, CdnaStartCodon
}

func utr3(t *cache.Transcript, _ *cache.Exon, anchor int64) (int64, Landmark) {
	return cdnaPosition(t, anchor) - t.CDNACodingEnd, CdnaStopCodon
}

func cdsForward(_ *cache.Transcript, e *cache.Exon, anchor int64) (int64, Landmark) {
	return e.CDSStart + (anchor - e.GenomicCodingStart), CdnaStartCodon
}

func cdsReverse(_ *cache.Transcript, e *cache.Exon, anchor int64) (int64, Landmark) {
	return e.CDSStart + (e.GenomicCodingEnd - anchor), CdnaStartCodon
}

// MapToCdna converts a genomic position into a transcript-relative coordinate.
//
// The position is anchored to the nearest exon: exonic positions anchor to
// themselves, others to the nearer exon edge with the distance carried as a
// strand-oriented offset. The anchor's cDNA position is then expressed
// relative to the transcript start (non-coding) or to the start/stop codon.
//
// The transcript must have at least one exon.
func MapToCdna(t *cache.Transcript, pos int64) CdnaCoord {
	e := &t.Exons[nearestExon(t, pos)]
	return mapFromExon(t, e, pos)
}

func mapFromExon(t *cache.Transcript, e *cache.Exon, pos int64) CdnaCoord {
	anchor := pos
	switch {
	case pos < e.Start:
		anchor = e.Start
	case pos > e.End:
		anchor = e.End
	}
	offset := (pos - anchor) * int64(strandSign(t))

	if !IsCoding(t) {
		return CdnaCoord{Position: cdnaPosition(t, anchor), Offset: offset, Landmark: TranscriptStart}
	}

	ref, landmark := zoneTable[strandIndex(t)][zoneOf(t, anchor)](t, e, anchor)
	return CdnaCoord{Position: ref, Offset: offset, Landmark: landmark}
}

func zoneOf(t *cache.Transcript, anchor int64) genomicZone {
	switch {
	case anchor < t.CDSStart:
		return zoneBeforeCoding
	case anchor > t.CDSEnd:
		return zoneAfterCoding
	}
	return zoneCoding
}

func strandIndex(t *cache.Transcript) int {
	if t.IsReverseStrand() {
		return 1
	}
	return 0
}

func strandSign(t *cache.Transcript) int8 {
	if t.IsReverseStrand() {
		return -1
	}
	return 1
}

// nearestExon returns the index of the exon whose nearer edge is closest to
// pos. Ties go to the first exon in list order.
func nearestExon(t *cache.Transcript, pos int64) int {
	if len(t.Exons) == 0 {
		panic(fmt.Sprintf("hgvs: transcript %s has no exons", t.ID))
	}
	best, bestDist := 0, int64(-1)
	for i := range t.Exons {
		d := min(abs(pos-t.Exons[i].Start), abs(pos-t.Exons[i].End))
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// cdnaPosition returns the 1-based position of an exonic genomic base in the
// spliced transcript. It walks the exons 5'->3', summing the lengths of the
// exons passed before the one containing pos.
//
// pos must lie inside an exon; anything else is a caller bug.
func cdnaPosition(t *cache.Transcript, pos int64) int64 {
	var acc int64
	if t.IsReverseStrand() {
		for i := len(t.Exons) - 1; i >= 0; i-- {
			e := &t.Exons[i]
			if pos >= e.Start {
				if pos > e.End {
					break
				}
				return acc + e.End - pos + 1
			}
			acc += e.Length()
		}
	} else {
		for i := range t.Exons {
			e := &t.Exons[i]
			if pos <= e.End {
				if pos < e.Start {
					break
				}
				return acc + pos - e.Start + 1
			}
			acc += e.Length()
		}
	}
	panic(fmt.Sprintf("hgvs: position %d is outside the exons of transcript %s", pos, t.ID))
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
