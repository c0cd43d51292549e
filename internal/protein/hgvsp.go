package protein

import "fmt"

// Effect is the protein-level outcome of a codon change.
type Effect int

const (
	Missense Effect = iota
	Synonymous
	StopGained
	StopLost
	StopRetained
	StartLost
)

func (e Effect) String() string {
	switch e {
	case Missense:
		return "missense_variant"
	case Synonymous:
		return "synonymous_variant"
	case StopGained:
		return "stop_gained"
	case StopLost:
		return "stop_lost"
	case StopRetained:
		return "stop_retained_variant"
	case StartLost:
		return "start_lost"
	}
	return fmt.Sprintf("Effect(%d)", int(e))
}

// Change describes a single amino acid change.
type Change struct {
	Effect   Effect
	Position int64 // 1-based amino acid position
	RefAA    byte
	AltAA    byte
}

// Classify returns the change caused by replacing refCodon with altCodon at
// amino acid position pos.
func Classify(refCodon, altCodon string, pos int64) Change {
	c := Change{
		Position: pos,
		RefAA:    TranslateCodon(refCodon),
		AltAA:    TranslateCodon(altCodon),
	}
	switch {
	case c.RefAA == c.AltAA && c.RefAA == '*':
		c.Effect = StopRetained
	case c.RefAA == c.AltAA:
		c.Effect = Synonymous
	case c.AltAA == '*':
		c.Effect = StopGained
	case c.RefAA == '*':
		c.Effect = StopLost
	case c.RefAA == 'M' && pos == 1:
		c.Effect = StartLost
	default:
		c.Effect = Missense
	}
	return c
}

// Format writes the change in HGVS protein notation with three letter
// amino acid codes, e.g. "p.Gly12Cys".
func (c Change) Format() string {
	switch c.Effect {
	case Synonymous:
		return fmt.Sprintf("p.%s%d=", aaThree(c.RefAA), c.Position)
	case StopGained:
		return fmt.Sprintf("p.%s%dTer", aaThree(c.RefAA), c.Position)
	case StopLost:
		// The 3' UTR is not loaded, so the extension length is unknown.
		return fmt.Sprintf("p.Ter%d%sext*?", c.Position, aaThree(c.AltAA))
	case StopRetained:
		return fmt.Sprintf("p.Ter%d=", c.Position)
	case StartLost:
		return "p.Met1?"
	}
	return fmt.Sprintf("p.%s%d%s", aaThree(c.RefAA), c.Position, aaThree(c.AltAA))
}
