// Package vcf provides variant records and VCF file parsing.
package vcf

import (
	"fmt"
	"strings"
)

// Variant represents a single genomic variant.
//
// Start and End are 1-based inclusive genomic positions. Records read from a
// VCF keep the VCF convention (shared anchor base, End = Start+len(Ref)-1);
// normalized records use the HGVS convention where a pure insertion has an
// empty Ref and End = Start-1.
type Variant struct {
	Chrom  string                 // Chromosome name (e.g., "12", "chr12")
	Start  int64                  // 1-based start position
	End    int64                  // 1-based inclusive end position
	ID     string                 // Variant identifier (e.g., rs ID)
	Ref    string                 // Reference allele, empty for insertions
	Alt    string                 // Alternate allele, empty for deletions
	Qual   float64                // Quality score
	Filter string                 // Filter status (PASS or filter name)
	Info   map[string]interface{} // INFO field key-value pairs
}

// New creates a variant spanning the reference allele starting at pos.
func New(chrom string, pos int64, ref, alt string) Variant {
	return Variant{
		Chrom: chrom,
		Start: pos,
		End:   pos + int64(len(ref)) - 1,
		Ref:   ref,
		Alt:   alt,
	}
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsIndel returns true if the variant is an insertion or deletion.
func (v *Variant) IsIndel() bool {
	return len(v.Ref) != len(v.Alt)
}

// IsInsertion returns true if the variant is an insertion.
func (v *Variant) IsInsertion() bool {
	return len(v.Alt) > len(v.Ref)
}

// IsDeletion returns true if the variant is a deletion.
func (v *Variant) IsDeletion() bool {
	return len(v.Ref) > len(v.Alt)
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	return strings.TrimPrefix(v.Chrom, "chr")
}

// Key returns a compact chrom:start:ref:alt identifier. Empty alleles are
// written as "-".
func (v *Variant) Key() string {
	return fmt.Sprintf("%s:%d:%s:%s", v.NormalizeChrom(), v.Start, alleleOrDash(v.Ref), alleleOrDash(v.Alt))
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return v.Key()
}

func alleleOrDash(a string) string {
	if a == "" {
		return "-"
	}
	return a
}
