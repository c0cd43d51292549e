// Package cache provides gene model loading and lookup.
package cache

// Transcript represents a specific gene isoform.
//
// Exons are always stored in ascending genomic order, regardless of strand.
// Coordinate walks that need transcript (5'->3') order iterate backwards on
// the reverse strand.
type Transcript struct {
	ID               string // Transcript ID (e.g., ENST00000311936)
	GeneID           string // Parent gene ID
	GeneName         string // Parent gene symbol
	ProteinID        string // Protein ID (e.g., ENSP00000308495), empty if non-coding
	Chrom            string // Chromosome
	Start            int64  // Transcript start (1-based)
	End              int64  // Transcript end (1-based, inclusive)
	Strand           int8   // +1 or -1
	Biotype          string // Transcript biotype
	Exons            []Exon // Exons, ascending genomic position
	CDSStart         int64  // Genomic coding start (1-based), 0 if non-coding
	CDSEnd           int64  // Genomic coding end (1-based, inclusive), 0 if non-coding
	CDNACodingStart  int64  // cDNA position of the first coding base, 0 if non-coding
	CDNACodingEnd    int64  // cDNA position of the last coding base, 0 if non-coding
	UnconfirmedStart bool   // CDS start not confirmed (GENCODE tag cds_start_NF)
	CDSSequence      string // Coding DNA sequence (loaded on demand)
	ProteinSequence  string // Translated protein sequence (loaded on demand)
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number   int   // Exon number in transcript order (1-based)
	Start    int64 // Genomic start (1-based)
	End      int64 // Genomic end (1-based, inclusive)
	// Genomic bounds of the coding portion, 0 if entirely non-coding.
	GenomicCodingStart int64
	GenomicCodingEnd   int64
	// CDS-relative positions (1-based) of the first and last coding base of
	// this exon in transcript order, 0 if entirely non-coding.
	CDSStart int64
	CDSEnd   int64
	Phase    int // Reading frame phase (0, 1, or 2), -1 if non-coding
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDNACodingEnd != 0
}

// IsForwardStrand returns true if the transcript is on the forward strand.
func (t *Transcript) IsForwardStrand() bool {
	return t.Strand == 1
}

// IsReverseStrand returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverseStrand() bool {
	return t.Strand == -1
}

// StrandSymbol returns "+" or "-".
func (t *Transcript) StrandSymbol() string {
	if t.IsReverseStrand() {
		return "-"
	}
	return "+"
}

// Contains returns true if the given position is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos <= t.End
}

// Overlaps returns true if the inclusive range [start, end] overlaps the transcript.
func (t *Transcript) Overlaps(start, end int64) bool {
	return start <= t.End && end >= t.Start
}

// ContainsCDS returns true if the given position is within the CDS boundaries.
func (t *Transcript) ContainsCDS(pos int64) bool {
	if !t.IsProteinCoding() {
		return false
	}
	return pos >= t.CDSStart && pos <= t.CDSEnd
}

// FindExon returns the exon containing the given genomic position, or nil if not in an exon.
// Uses binary search over the ascending exon list.
func (t *Transcript) FindExon(pos int64) *Exon {
	lo, hi := 0, len(t.Exons)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := &t.Exons[mid]
		if pos >= e.Start && pos <= e.End {
			return e
		}
		if pos < e.Start {
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return nil
}

// Length returns the number of bases in the exon.
func (e *Exon) Length() int64 {
	return e.End - e.Start + 1
}

// Contains returns true if the exon contains the genomic position.
func (e *Exon) Contains(pos int64) bool {
	return pos >= e.Start && pos <= e.End
}

// IsCoding returns true if the exon contains coding sequence.
func (e *Exon) IsCoding() bool {
	return e.GenomicCodingStart > 0 && e.GenomicCodingEnd > 0
}
