package hgvs

import (
	"strconv"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// maxAlleleLength is the longest allele written out literally; longer
// alleles are replaced by their length.
const maxAlleleLength = 4

// Kind selects the HGVS coordinate system of a transcript.
type Kind int

const (
	KindUnknown Kind = iota
	KindCoding
	KindNonCoding
)

func (k Kind) String() string {
	switch k {
	case KindCoding:
		return "CODING"
	case KindNonCoding:
		return "NON_CODING"
	}
	return "UNKNOWN"
}

// MutationType is the HGVS change type written after the coordinates.
type MutationType int

const (
	Substitution MutationType = iota
	Deletion
	Insertion
	Duplication
	Delins
)

func (m MutationType) String() string {
	switch m {
	case Substitution:
		return "substitution"
	case Deletion:
		return "deletion"
	case Insertion:
		return "insertion"
	case Duplication:
		return "duplication"
	case Delins:
		return "delins"
	}
	return "MutationType(" + strconv.Itoa(int(m)) + ")"
}

// BuildingComponents holds everything needed to write one transcript-level
// HGVS string. Alleles are in transcript orientation.
type BuildingComponents struct {
	TranscriptID string
	GeneID       string
	Kind         Kind
	MutationType MutationType
	CdnaStart    CdnaCoord
	CdnaEnd      CdnaCoord
	Ref          string
	Alt          string

	// Genomic origin, kept for diagnostics.
	Chrom string
	Start int64
}

// FormatTranscriptAllele writes "<transcript>(<gene>):c.<coords><allele>",
// using "n." for non-coding transcripts.
func FormatTranscriptAllele(bc *BuildingComponents) (string, error) {
	var b strings.Builder
	b.WriteString(formatPrefix(bc))
	b.WriteByte(':')

	switch bc.Kind {
	case KindCoding:
		b.WriteString("c.")
	case KindNonCoding:
		b.WriteString("n.")
	default:
		return "", &NotationKindError{
			Chrom: bc.Chrom,
			Start: bc.Start,
			Ref:   bc.Ref,
			Alt:   bc.Alt,
			Kind:  bc.Kind,
		}
	}

	b.WriteString(FormatCdnaCoords(bc))
	b.WriteString(FormatDnaAllele(bc))
	return b.String(), nil
}

func formatPrefix(bc *BuildingComponents) string {
	return bc.TranscriptID + "(" + bc.GeneID + ")"
}

// FormatCdnaCoords writes the coordinate range, collapsed to a single
// coordinate when both ends are equal.
func FormatCdnaCoords(bc *BuildingComponents) string {
	if bc.CdnaStart == bc.CdnaEnd {
		return bc.CdnaStart.String()
	}
	return bc.CdnaStart.String() + "_" + bc.CdnaEnd.String()
}

// FormatDnaAllele writes the change, e.g. "G>T", "del", "dup", "insTTG" or
// "delinsAC".
func FormatDnaAllele(bc *BuildingComponents) string {
	switch bc.MutationType {
	case Substitution:
		return bc.Ref + ">" + bc.Alt
	case Deletion:
		return "del"
	case Duplication:
		return "dup"
	case Insertion:
		return "ins" + bc.Alt
	case Delins:
		return "delins" + bc.Alt
	}
	return ""
}

// setRangeCoordsAndAlleles maps the genomic span onto the transcript and
// stores the alleles in transcript orientation. On the reverse strand the
// span ends swap and the alleles are reverse-complemented. Alleles longer
// than maxAlleleLength are replaced by their length. It reports false when
// an allele cannot be complemented.
func setRangeCoordsAndAlleles(genomicStart, genomicEnd int64, ref, alt string, t *cache.Transcript, bc *BuildingComponents) bool {
	start, end := genomicStart, genomicEnd
	if t.IsReverseStrand() {
		start, end = genomicEnd, genomicStart
		var ok bool
		if ref, ok = orientAllele(ref); !ok {
			return false
		}
		if alt, ok = orientAllele(alt); !ok {
			return false
		}
	} else {
		ref, alt = longAllele(ref), longAllele(alt)
	}

	bc.Ref = ref
	bc.Alt = alt
	bc.CdnaStart = MapToCdna(t, start)
	bc.CdnaEnd = MapToCdna(t, end)
	return true
}

func orientAllele(a string) (string, bool) {
	if len(a) > maxAlleleLength {
		return strconv.Itoa(len(a)), true
	}
	return ReverseComplement(a)
}

func longAllele(a string) string {
	if len(a) > maxAlleleLength {
		return strconv.Itoa(len(a))
	}
	return a
}
