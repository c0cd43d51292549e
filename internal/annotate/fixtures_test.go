package annotate

import (
	"context"
	"strings"
	"sync"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// testCache holds one forward-strand coding gene on chr1 with exons
// 100-200, 300-400, 500-600 and CDS 150-548.
func testCache() *cache.Cache {
	t := &cache.Transcript{
		ID:     "ENST01",
		GeneID: "ENSG01",
		Chrom:  "1",
		Start:  100,
		End:    600,
		Strand: 1,
		Exons: []cache.Exon{
			{Start: 100, End: 200},
			{Start: 300, End: 400},
			{Start: 500, End: 600},
		},
	}
	t.NumberExons()
	t.AnnotateCoding(150, 548, 0)

	g := &cache.Gene{ID: "ENSG01", Name: "GENE1", Chrom: "1", Strand: 1}
	g.AddTranscript(t)

	c := cache.New()
	c.AddGene(g)
	return c
}

// testCalculator computes against a chr1 reference of repeated ACGT.
func testCalculator() *hgvs.Calculator {
	genome := cache.NewGenome()
	genome.Add("1", strings.Repeat("ACGT", 500))
	return hgvs.NewCalculator(genome)
}

// countingCalculator wraps a calculator and counts invocations.
type countingCalculator struct {
	mu    sync.Mutex
	calls int
	next  Calculator
}

func (c *countingCalculator) RunWithOptions(ctx context.Context, v vcf.Variant, genes []*cache.Gene, normalize bool) ([]string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.next.RunWithOptions(ctx, v, genes, normalize)
}

// memResults is an in-memory ResultCache.
type memResults struct {
	mu      sync.Mutex
	entries map[memKey][]string
	writes  int
}

type memKey struct {
	variant  string
	settings Settings
}

func newMemResults() *memResults {
	return &memResults{entries: make(map[memKey][]string)}
}

func (m *memResults) Lookup(v vcf.Variant, s Settings) ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hgvs, ok := m.entries[memKey{v.Key(), s}]
	return hgvs, ok, nil
}

func (m *memResults) WriteResults(s Settings, results []Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	for _, r := range results {
		m.entries[memKey{r.Variant.Key(), s}] = r.HGVS
	}
	return nil
}

// memWriter records written results.
type memWriter struct {
	header  bool
	flushed bool
	rows    []string
	failOn  int
}

func (w *memWriter) WriteHeader() error {
	w.header = true
	return nil
}

func (w *memWriter) Write(v *vcf.Variant, hgvs []string) error {
	if w.failOn > 0 && len(w.rows)+1 == w.failOn {
		return errWriteFailed
	}
	w.rows = append(w.rows, v.Key()+"="+strings.Join(hgvs, ","))
	return nil
}

func (w *memWriter) Flush() error {
	w.flushed = true
	return nil
}
