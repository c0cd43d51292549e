package hgvs

import (
	"fmt"

	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// Normalizer converts a variant to its minimal HGVS-style representation.
type Normalizer interface {
	Normalize(v vcf.Variant) (vcf.Variant, error)
}

// TrimNormalizer removes the bases shared by both alleles, suffix first and
// then prefix, and recomputes the span. Pure insertions end up with an empty
// Ref and End = Start-1; pure deletions with an empty Alt.
type TrimNormalizer struct{}

// Normalize implements Normalizer.
func (TrimNormalizer) Normalize(v vcf.Variant) (vcf.Variant, error) {
	if v.Ref == v.Alt {
		return vcf.Variant{}, fmt.Errorf("%w: %s cannot be normalized", ErrUnsupportedVariantFormat, v.Key())
	}

	ref, alt := v.Ref, v.Alt
	for len(ref) > 0 && len(alt) > 0 && ref[len(ref)-1] == alt[len(alt)-1] {
		ref, alt = ref[:len(ref)-1], alt[:len(alt)-1]
	}
	trimmed := 0
	for trimmed < len(ref) && trimmed < len(alt) && ref[trimmed] == alt[trimmed] {
		trimmed++
	}

	v.Start += int64(trimmed)
	v.Ref = ref[trimmed:]
	v.Alt = alt[trimmed:]
	v.End = v.Start + int64(len(v.Ref)) - 1
	return v, nil
}
