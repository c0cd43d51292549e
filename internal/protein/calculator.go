package protein

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// Calculator produces protein HGVS strings for substitutions that fall on a
// coding base. Other variants yield no result.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a protein calculator.
func NewCalculator() *Calculator {
	return &Calculator{logger: zap.NewNop()}
}

// SetLogger sets the logger for debug messages.
func (c *Calculator) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Compute implements hgvs.ProteinCalculator.
func (c *Calculator) Compute(v vcf.Variant, t *cache.Transcript) []hgvs.ProteinResult {
	change, ok := c.change(v, t)
	if !ok {
		return nil
	}
	return []hgvs.ProteinResult{{ID: t.ProteinID, HGVS: change.Format()}}
}

func (c *Calculator) change(v vcf.Variant, t *cache.Transcript) (Change, bool) {
	if t.ProteinID == "" || t.CDSSequence == "" || !hgvs.IsCoding(t) || len(t.Exons) == 0 {
		return Change{}, false
	}
	if len(v.Ref) != 1 || len(v.Alt) != 1 {
		return Change{}, false
	}

	if !hgvs.OnlySpansCodingSequence(v, t) {
		return Change{}, false
	}
	coord := hgvs.MapToCdna(t, v.Start)
	if coord.Landmark != hgvs.CdnaStartCodon || coord.Position < 1 {
		return Change{}, false
	}
	cdsPos := coord.Position

	// Negative phase shifts fall in an incomplete leading codon.
	posInCodon := hgvs.PhaseShift(cdsPos, t)
	if posInCodon < 0 {
		return Change{}, false
	}
	codonStart := cdsPos - 1 - int64(posInCodon)
	if codonStart+3 > int64(len(t.CDSSequence)) {
		return Change{}, false
	}
	refCodon := t.CDSSequence[codonStart : codonStart+3]

	ref, alt := v.Ref, v.Alt
	if t.IsReverseStrand() {
		var ok1, ok2 bool
		ref, ok1 = hgvs.ReverseComplement(ref)
		alt, ok2 = hgvs.ReverseComplement(alt)
		if !ok1 || !ok2 {
			return Change{}, false
		}
	}
	if refCodon[posInCodon] != ref[0] {
		c.logger.Debug("reference base does not match CDS sequence",
			zap.String("transcript", t.ID),
			zap.Int64("cds_position", cdsPos),
			zap.String("ref", ref),
			zap.String("codon", refCodon))
		return Change{}, false
	}

	altCodon := MutateCodon(refCodon, posInCodon, alt[0])
	return Classify(refCodon, altCodon, hgvs.AminoAcidPosition(cdsPos, t)), true
}

// TranslateTranscripts fills ProteinSequence from CDSSequence for coding
// transcripts that have none. The terminal stop is not included. Returns
// the number of transcripts translated.
func TranslateTranscripts(c *cache.Cache) int {
	n := 0
	for _, chrom := range c.Chromosomes() {
		for _, g := range c.GenesByChrom(chrom) {
			for _, t := range g.Transcripts {
				if t.CDSSequence == "" || t.ProteinSequence != "" {
					continue
				}
				t.ProteinSequence = Translate(t)
				n++
			}
		}
	}
	return n
}

// Translate returns the protein sequence encoded by the transcript's CDS.
// The bases of an incomplete leading codon are skipped, so residue 1 is the
// first full codon, the same numbering hgvs.AminoAcidPosition uses.
func Translate(t *cache.Transcript) string {
	seq := t.CDSSequence
	if phase := hgvs.FirstCodingExonPhase(t); phase > 0 && phase < len(seq) {
		seq = seq[phase:]
	}
	p := TranslateSequence(seq)
	if len(p) > 0 && p[len(p)-1] == '*' {
		p = p[:len(p)-1]
	}
	return p
}
