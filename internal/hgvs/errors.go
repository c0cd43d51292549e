package hgvs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedVariantFormat is returned when a variant fails the allele
	// validity check or cannot be normalized.
	ErrUnsupportedVariantFormat = errors.New("unsupported variant format")

	// ErrUnsupportedNotationKind is returned when an HGVS string is requested
	// for a kind other than coding or non-coding.
	ErrUnsupportedNotationKind = errors.New("unsupported notation kind")

	// ErrSequenceRetrieval wraps failures of the reference sequence provider.
	ErrSequenceRetrieval = errors.New("sequence retrieval failed")
)

// NotationKindError reports the coordinates of a variant whose building
// components carry an unsupported kind.
type NotationKindError struct {
	Chrom string
	Start int64
	Ref   string
	Alt   string
	Kind  Kind
}

func (e *NotationKindError) Error() string {
	return fmt.Sprintf("HGVS calculation not implemented for variant %s:%d:%s:%s; kind: %s",
		e.Chrom, e.Start, e.Ref, e.Alt, e.Kind)
}

// Is makes errors.Is(err, ErrUnsupportedNotationKind) match.
func (e *NotationKindError) Is(target error) bool {
	return target == ErrUnsupportedNotationKind
}
