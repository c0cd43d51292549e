package cache

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// ErrChromosomeNotFound is returned when a sequence is requested for a
// chromosome absent from the loaded genome.
var ErrChromosomeNotFound = errors.New("chromosome not found")

// Genome holds reference chromosome sequences in memory and serves
// arbitrary 1-based inclusive ranges from them.
type Genome struct {
	mu     sync.RWMutex
	chroms map[string][]byte
}

// NewGenome creates an empty genome.
func NewGenome() *Genome {
	return &Genome{chroms: make(map[string][]byte)}
}

// LoadGenome reads a (optionally gzip-compressed) genome FASTA file. When
// chroms is non-empty only those chromosomes are kept.
func LoadGenome(path string, chroms ...string) (*Genome, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, fmt.Errorf("open genome FASTA: %w", err)
	}
	defer r.Close()

	g := NewGenome()
	if err := g.Read(r, chroms...); err != nil {
		return nil, err
	}
	return g, nil
}

// Read parses FASTA records from r and adds them to the genome.
func (g *Genome) Read(r io.Reader, chroms ...string) error {
	keep := make(map[string]bool, len(chroms))
	for _, c := range chroms {
		keep[normalizeChrom(c)] = true
	}

	fr := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA))
	for {
		s, err := fr.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read genome FASTA: %w", err)
		}
		chrom := normalizeChrom(s.Name())
		if len(keep) > 0 && !keep[chrom] {
			continue
		}
		ls, ok := s.(*linear.Seq)
		if !ok {
			return fmt.Errorf("unexpected sequence type %T", s)
		}
		g.Add(chrom, string(alphabet.LettersToBytes(ls.Seq)))
	}
}

// Add stores the sequence for a chromosome, replacing any previous one.
func (g *Genome) Add(chrom, sequence string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chroms[normalizeChrom(chrom)] = []byte(strings.ToUpper(sequence))
}

// FetchSequence returns the bases in the 1-based inclusive range [start, end].
// It fails unless exactly end-start+1 bases are available.
func (g *Genome) FetchSequence(chrom string, start, end int64) (string, error) {
	g.mu.RLock()
	s, ok := g.chroms[normalizeChrom(chrom)]
	g.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrChromosomeNotFound, chrom)
	}
	if start < 1 || end < start || end > int64(len(s)) {
		return "", fmt.Errorf("range %s:%d-%d outside sequence of length %d", chrom, start, end, len(s))
	}
	return string(s[start-1 : end]), nil
}

// Len returns the length of a chromosome, or 0 if it is not loaded.
func (g *Genome) Len(chrom string) int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return int64(len(g.chroms[normalizeChrom(chrom)]))
}

// Chromosomes returns the number of loaded chromosomes.
func (g *Genome) Chromosomes() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.chroms)
}
