// Package annotate computes HGVS strings for streams of variants.
package annotate

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// GeneLookup finds the genes overlapping a genomic range.
type GeneLookup interface {
	FindGenes(chrom string, start, end int64) []*cache.Gene
}

// Calculator computes HGVS strings for a variant against a set of genes.
// *hgvs.Calculator implements it.
type Calculator interface {
	RunWithOptions(ctx context.Context, v vcf.Variant, genes []*cache.Gene, normalize bool) ([]string, error)
}

// Result is the HGVS output for one variant.
type Result struct {
	Variant vcf.Variant
	HGVS    []string
}

// Settings are the calculation options that change HGVS output. Cached
// results are only reused under equal settings.
type Settings struct {
	Normalize bool
	Window    int64 // justification radius; 0 when the calculator has none
}

// ResultCache stores computed results across runs. Lookup reports whether
// the variant was computed before under the same settings; a cached variant
// may have no strings.
type ResultCache interface {
	Lookup(v vcf.Variant, s Settings) ([]string, bool, error)
	WriteResults(s Settings, results []Result) error
}

// windowed is implemented by calculators with a justification window.
type windowed interface {
	Window() int64
}

// ResultWriter writes annotation output.
type ResultWriter interface {
	WriteHeader() error
	Write(v *vcf.Variant, hgvs []string) error
	Flush() error
}

// Annotator runs the HGVS calculator over variants, looking up overlapping
// genes for each one.
type Annotator struct {
	genes     GeneLookup
	calc      Calculator
	results   ResultCache
	normalize bool
	workers   int
	batchSize int
	runID     string
	logger    *zap.Logger
}

// NewAnnotator creates an annotator. Each annotator gets a run ID that is
// attached to its log messages.
func NewAnnotator(genes GeneLookup, calc Calculator) *Annotator {
	a := &Annotator{
		genes:     genes,
		calc:      calc,
		normalize: true,
		batchSize: 1000,
		runID:     uuid.NewString(),
	}
	a.SetLogger(zap.NewNop())
	return a
}

// SetLogger sets the logger for warning and info messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l.With(zap.String("run_id", a.runID))
}

// SetNormalize controls whether variants are normalized before computation.
func (a *Annotator) SetNormalize(normalize bool) {
	a.normalize = normalize
}

// SetWorkers sets the number of annotation workers; 0 uses runtime.NumCPU().
func (a *Annotator) SetWorkers(n int) {
	a.workers = n
}

// SetResultCache enables reuse of previously computed results.
func (a *Annotator) SetResultCache(rc ResultCache) {
	a.results = rc
}

// Settings returns the options results are computed and cached under.
func (a *Annotator) Settings() Settings {
	s := Settings{Normalize: a.normalize}
	if w, ok := a.calc.(windowed); ok {
		s.Window = w.Window()
	}
	return s
}

// RunID returns the identifier of this annotator's run.
func (a *Annotator) RunID() string {
	return a.runID
}

// Annotate returns the HGVS strings for a single variant. Variants that
// overlap no gene yield no strings.
func (a *Annotator) Annotate(ctx context.Context, v *vcf.Variant) ([]string, error) {
	hgvs, _, err := a.annotate(ctx, v)
	return hgvs, err
}

func (a *Annotator) annotate(ctx context.Context, v *vcf.Variant) ([]string, bool, error) {
	if a.results != nil {
		hgvs, ok, err := a.results.Lookup(*v, a.Settings())
		if err != nil {
			a.logger.Warn("result cache lookup failed", zap.String("variant", v.Key()), zap.Error(err))
		} else if ok {
			return hgvs, true, nil
		}
	}

	genes := a.genes.FindGenes(v.NormalizeChrom(), v.Start, v.End)
	if len(genes) == 0 {
		return nil, false, nil
	}
	hgvs, err := a.calc.RunWithOptions(ctx, *v, genes, a.normalize)
	if err != nil {
		return nil, false, err
	}
	return hgvs, false, nil
}

// Stats summarizes a batch run.
type Stats struct {
	Variants int // variants read from the input
	Failed   int // variants whose computation failed
	Cached   int // variants served from the result cache
	Strings  int // HGVS strings written
}

// AnnotateAll annotates every variant from parser and writes the results in
// input order. Variants that fail are logged and skipped.
func (a *Annotator) AnnotateAll(ctx context.Context, parser vcf.VariantParser, writer ResultWriter) (Stats, error) {
	var stats Stats
	if err := writer.WriteHeader(); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}

	workers := a.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make(chan WorkItem, 2*workers)
	parsed := make(chan error, 1)

	go func() {
		defer close(items)
		seq := 0
		for {
			v, err := parser.Next()
			if err != nil {
				parsed <- fmt.Errorf("read variant: %w", err)
				return
			}
			if v == nil {
				parsed <- nil
				return
			}
			stats.Variants++

			// Each alternate allele gets its own sequence number.
			for _, variant := range vcf.SplitMultiAllelic(v) {
				select {
				case items <- WorkItem{Seq: seq, Variant: variant}:
				case <-ctx.Done():
					parsed <- ctx.Err()
					return
				}
				seq++
			}
		}
	}()

	pending := newResultBatch(a.batchSize)
	results := a.ParallelAnnotate(ctx, items, workers)

	err := OrderedCollect(results, func(r WorkResult) error {
		if err := a.collect(r, writer, pending, &stats); err != nil {
			cancel()
			return err
		}
		return nil
	})
	// The producer has finished once the results channel is drained.
	parseErr := <-parsed
	if err != nil {
		return stats, err
	}
	if parseErr != nil {
		return stats, parseErr
	}
	if a.results != nil {
		if err := a.flushResults(pending); err != nil {
			return stats, err
		}
	}

	a.logger.Info("annotation complete",
		zap.Int("variants", stats.Variants),
		zap.Int("failed", stats.Failed),
		zap.Int("cached", stats.Cached),
		zap.Int("hgvs", stats.Strings))

	return stats, writer.Flush()
}

func (a *Annotator) collect(r WorkResult, writer ResultWriter, pending *resultBatch, stats *Stats) error {
	if r.Err != nil {
		if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
			return r.Err
		}
		stats.Failed++
		a.logger.Warn("failed to annotate variant",
			zap.String("chrom", r.Variant.Chrom),
			zap.Int64("start", r.Variant.Start),
			zap.String("ref", r.Variant.Ref),
			zap.String("alt", r.Variant.Alt),
			zap.Error(r.Err))
		return nil
	}

	if r.Cached {
		stats.Cached++
	} else if a.results != nil && pending.add(Result{Variant: *r.Variant, HGVS: r.HGVS}) {
		if err := a.flushResults(pending); err != nil {
			return err
		}
	}

	stats.Strings += len(r.HGVS)
	if err := writer.Write(r.Variant, r.HGVS); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func (a *Annotator) flushResults(b *resultBatch) error {
	if len(b.results) == 0 {
		return nil
	}
	if err := a.results.WriteResults(a.Settings(), b.results); err != nil {
		return fmt.Errorf("write result cache: %w", err)
	}
	b.reset()
	return nil
}

// resultBatch buffers new results for the result cache. A variant seen
// twice in one run is only buffered once.
type resultBatch struct {
	size    int
	results []Result
	seen    map[string]bool
}

func newResultBatch(size int) *resultBatch {
	return &resultBatch{size: size, seen: make(map[string]bool)}
}

// add buffers r and reports whether the batch is full.
func (b *resultBatch) add(r Result) bool {
	key := r.Variant.Key()
	if b.seen[key] {
		return false
	}
	b.seen[key] = true
	b.results = append(b.results, r)
	return len(b.results) >= b.size
}

func (b *resultBatch) reset() {
	b.results = b.results[:0]
}
