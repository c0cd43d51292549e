// Package hgvs computes transcript-level HGVS nomenclature for genomic variants.
package hgvs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// DefaultWindow is the number of reference bases fetched on each side of an
// indel for justification.
const DefaultWindow = 100

// SequenceProvider returns reference bases for the 1-based inclusive range
// [start, end]. It must return exactly end-start+1 bases or an error.
type SequenceProvider interface {
	FetchSequence(chrom string, start, end int64) (string, error)
}

// lengthProvider is implemented by sequence providers that know chromosome
// lengths. The justification window is clipped to the chromosome end when
// the provider reports a positive length.
type lengthProvider interface {
	Len(chrom string) int64
}

// ProteinResult is one protein-level HGVS description.
type ProteinResult struct {
	ID   string // Protein identifier (e.g., ENSP00000308495)
	HGVS string // Protein change (e.g., p.Gly12Cys)
}

// ProteinCalculator computes protein-level HGVS for a normalized variant.
type ProteinCalculator interface {
	Compute(v vcf.Variant, t *cache.Transcript) []ProteinResult
}

// Calculator produces HGVS strings for variants against gene models.
// Configure it before use; it is then safe for concurrent use as long as
// its collaborators are.
type Calculator struct {
	sequences  SequenceProvider
	normalizer Normalizer
	protein    ProteinCalculator
	window     int64
	logger     *zap.Logger
}

// NewCalculator creates a calculator that fetches justification windows
// from seq and normalizes with TrimNormalizer.
func NewCalculator(seq SequenceProvider) *Calculator {
	return &Calculator{
		sequences:  seq,
		normalizer: TrimNormalizer{},
		window:     DefaultWindow,
		logger:     zap.NewNop(),
	}
}

// SetNormalizer replaces the variant normalizer.
func (c *Calculator) SetNormalizer(n Normalizer) {
	c.normalizer = n
}

// SetProteinCalculator sets the component used for protein-level HGVS.
// Without one only transcript-level strings are produced.
func (c *Calculator) SetProteinCalculator(p ProteinCalculator) {
	c.protein = p
}

// SetWindow sets the justification radius in bases.
func (c *Calculator) SetWindow(n int64) {
	if n > 0 {
		c.window = n
	}
}

// Window returns the justification radius in bases.
func (c *Calculator) Window() int64 {
	return c.window
}

// SetLogger sets the logger for warning and debug messages.
func (c *Calculator) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Run returns the HGVS strings of v for every transcript of genes,
// normalizing the variant first.
func (c *Calculator) Run(ctx context.Context, v vcf.Variant, genes []*cache.Gene) ([]string, error) {
	return c.RunWithOptions(ctx, v, genes, true)
}

// RunWithOptions is Run with an explicit normalization toggle. Results are
// ordered by gene, then transcript, with each transcript string followed by
// its protein strings.
func (c *Calculator) RunWithOptions(ctx context.Context, v vcf.Variant, genes []*cache.Gene, normalize bool) ([]string, error) {
	if !IsValid(v) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVariantFormat, v.Key())
	}

	r := &run{calc: c, variant: v, normalize: normalize}
	var out []string
	for _, g := range genes {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := r.gene(g)
		out = append(out, res...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// RunGene returns the HGVS strings of v for every transcript of gene.
func (c *Calculator) RunGene(ctx context.Context, v vcf.Variant, gene *cache.Gene) ([]string, error) {
	return c.RunGeneWithOptions(ctx, v, gene, true)
}

// RunGeneWithOptions is RunGene with an explicit normalization toggle.
func (c *Calculator) RunGeneWithOptions(ctx context.Context, v vcf.Variant, gene *cache.Gene, normalize bool) ([]string, error) {
	return c.RunWithOptions(ctx, v, []*cache.Gene{gene}, normalize)
}

// run carries the state of one variant across transcripts. The normalized
// variant is computed on first use and shared read-only.
type run struct {
	calc       *Calculator
	variant    vcf.Variant
	normalize  bool
	normalized *vcf.Variant
}

func (r *run) gene(g *cache.Gene) ([]string, error) {
	var out []string
	for _, t := range g.Transcripts {
		res, err := r.transcript(t, g.ID)
		if err != nil {
			return out, err
		}
		out = append(out, res...)
	}
	return out, nil
}

func (r *run) transcript(t *cache.Transcript, geneID string) ([]string, error) {
	v := r.variant
	if cache.NormalizeChrom(v.Chrom) != t.Chrom || v.Start > t.End || v.End < t.Start {
		return nil, nil
	}

	nv, err := r.normalizedVariant()
	if err != nil {
		return nil, err
	}

	log := r.calc.logger.With(
		zap.String("transcript", t.ID),
		zap.String("gene", geneID),
		zap.String("chrom", nv.Chrom),
		zap.Int64("start", nv.Start))

	if len(t.Exons) == 0 {
		log.Warn("skipping transcript without exons")
		return nil, nil
	}

	hgvs, err := r.calc.transcriptHGVS(*nv, t, geneID)
	if err != nil {
		if errors.Is(err, ErrUnsupportedNotationKind) || errors.Is(err, ErrSequenceRetrieval) {
			log.Warn("skipping transcript", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	if hgvs == "" {
		log.Debug("no transcript HGVS")
		return nil, nil
	}

	out := []string{hgvs}
	if r.calc.protein != nil {
		for _, p := range r.calc.protein.Compute(*nv, t) {
			out = append(out, p.ID+":"+p.HGVS)
		}
	}
	return out, nil
}

func (r *run) normalizedVariant() (*vcf.Variant, error) {
	if r.normalized != nil {
		return r.normalized, nil
	}
	nv := r.variant
	if r.normalize {
		var err error
		nv, err = r.calc.normalizer.Normalize(r.variant)
		if err != nil {
			if !errors.Is(err, ErrUnsupportedVariantFormat) {
				err = fmt.Errorf("%w: %w", ErrUnsupportedVariantFormat, err)
			}
			return nil, err
		}
	}
	r.normalized = &nv
	return r.normalized, nil
}

// transcriptHGVS builds the transcript-level string for a normalized variant.
// An empty string with a nil error means the variant cannot be described on
// this transcript.
func (c *Calculator) transcriptHGVS(v vcf.Variant, t *cache.Transcript, geneID string) (string, error) {
	bc := &BuildingComponents{
		TranscriptID: t.ID,
		GeneID:       geneID,
		Kind:         KindNonCoding,
		Chrom:        v.Chrom,
		Start:        v.Start,
	}
	if IsCoding(t) {
		bc.Kind = KindCoding
	}

	var ok bool
	switch {
	case v.Ref == "" && v.Alt != "":
		shifted, window, err := c.justify(v, v.Alt, t)
		if err != nil {
			return "", err
		}
		if dup, isDup := duplication(shifted, window.seq, window.start, t); isDup {
			bc.MutationType = Duplication
			ok = setRangeCoordsAndAlleles(dup.Start, dup.End, dup.Ref, "", t, bc)
		} else {
			bc.MutationType = Insertion
			// Inserted bases sit between the two flanking reference bases.
			ok = setRangeCoordsAndAlleles(shifted.Start-1, shifted.Start, "", shifted.Alt, t, bc)
		}

	case v.Alt == "" && v.Ref != "":
		shifted, _, err := c.justify(v, v.Ref, t)
		if err != nil {
			return "", err
		}
		bc.MutationType = Deletion
		ok = setRangeCoordsAndAlleles(shifted.Start, shifted.End, shifted.Ref, "", t, bc)

	case len(v.Ref) == 1 && len(v.Alt) == 1:
		bc.MutationType = Substitution
		ok = setRangeCoordsAndAlleles(v.Start, v.End, v.Ref, v.Alt, t, bc)

	default:
		bc.MutationType = Delins
		ok = setRangeCoordsAndAlleles(v.Start, v.End, v.Ref, v.Alt, t, bc)
	}
	if !ok {
		return "", nil
	}

	return FormatTranscriptAllele(bc)
}

// window is a stretch of reference sequence starting at genomic position start.
type window struct {
	seq   string
	start int64
}

// justify fetches the reference around v and shifts allele 3' in transcript
// orientation.
func (c *Calculator) justify(v vcf.Variant, allele string, t *cache.Transcript) (vcf.Variant, window, error) {
	w := window{start: max(1, v.Start-c.window)}
	end := v.End + c.window
	if lp, ok := c.sequences.(lengthProvider); ok {
		if n := lp.Len(v.Chrom); n > 0 {
			end = max(v.End, min(end, n))
		}
	}
	seq, err := c.sequences.FetchSequence(v.Chrom, w.start, end)
	if err != nil {
		return v, w, fmt.Errorf("%w: %s:%d-%d: %w", ErrSequenceRetrieval, v.Chrom, w.start, end, err)
	}
	if int64(len(seq)) != end-w.start+1 {
		return v, w, fmt.Errorf("%w: %s:%d-%d: got %d bases", ErrSequenceRetrieval, v.Chrom, w.start, end, len(seq))
	}
	w.seq = strings.ToUpper(seq)

	startOffset := int(v.Start - w.start)
	endOffset := int(v.End - w.start)
	return Justify(v, startOffset, endOffset, allele, w.seq, t.Strand), w, nil
}

// duplication reports whether a justified insertion repeats the reference
// bases immediately 5' of it in transcript orientation, and returns the
// duplicated reference span.
func duplication(v vcf.Variant, seq string, seqStart int64, t *cache.Transcript) (vcf.Variant, bool) {
	n := len(v.Alt)
	offset := int(v.Start - seqStart)

	var from int
	if t.IsReverseStrand() {
		from = offset
	} else {
		from = offset - n
	}
	if from < 0 || from+n > len(seq) || seq[from:from+n] != v.Alt {
		return v, false
	}

	dup := v
	dup.Start = seqStart + int64(from)
	dup.End = dup.Start + int64(n) - 1
	dup.Ref = v.Alt
	return dup, true
}
