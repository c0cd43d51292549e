package hgvs

import (
	"strconv"
	"strings"
)

// Landmark is the anchor a cDNA reference position is measured from.
type Landmark int

const (
	// TranscriptStart anchors positions on non-coding transcripts.
	TranscriptStart Landmark = iota
	// CdnaStartCodon anchors 5' UTR and coding positions.
	CdnaStartCodon
	// CdnaStopCodon anchors 3' UTR positions.
	CdnaStopCodon
)

func (l Landmark) String() string {
	switch l {
	case TranscriptStart:
		return "TRANSCRIPT_START"
	case CdnaStartCodon:
		return "CDNA_START_CODON"
	case CdnaStopCodon:
		return "CDNA_STOP_CODON"
	}
	return "Landmark(" + strconv.Itoa(int(l)) + ")"
}

// CdnaCoord is a transcript-relative coordinate: a reference position
// measured from Landmark plus a signed intronic offset. Offset is 0 for
// exonic positions; negative values lie upstream in transcript orientation.
type CdnaCoord struct {
	Position int64
	Offset   int64
	Landmark Landmark
}

// String formats the coordinate in HGVS syntax, e.g. "76", "88+1", "-14",
// "*6" or "*6-2".
func (c CdnaCoord) String() string {
	var b strings.Builder
	if c.Landmark == CdnaStopCodon {
		b.WriteByte('*')
	}
	b.WriteString(strconv.FormatInt(c.Position, 10))
	if c.Offset > 0 {
		b.WriteByte('+')
	}
	if c.Offset != 0 {
		b.WriteString(strconv.FormatInt(c.Offset, 10))
	}
	return b.String()
}
