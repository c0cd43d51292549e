// Package cache provides gene model loading and lookup.
package cache

import (
	"sort"
	"sync"
)

// Cache provides access to gene models for HGVS computation.
type Cache struct {
	mu sync.RWMutex
	// genes stores genes indexed by chromosome, in load order
	genes map[string][]*Gene
	// trees are built lazily per chromosome and dropped when genes are added
	trees map[string]*IntervalTree
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		genes: make(map[string][]*Gene),
		trees: make(map[string]*IntervalTree),
	}
}

// AddGene adds a gene to the cache.
func (c *Cache) AddGene(g *Gene) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genes[g.Chrom] = append(c.genes[g.Chrom], g)
	delete(c.trees, g.Chrom)
}

// FindGenes returns all genes on chrom overlapping the inclusive range [start, end].
func (c *Cache) FindGenes(chrom string, start, end int64) []*Gene {
	if end < start {
		// Insertions are represented with end = start - 1.
		start, end = end, start
	}
	return c.tree(chrom).FindOverlaps(start, end)
}

func (c *Cache) tree(chrom string) *IntervalTree {
	c.mu.RLock()
	tree, ok := c.trees[chrom]
	c.mu.RUnlock()
	if ok {
		return tree
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tree, ok := c.trees[chrom]; ok {
		return tree
	}
	tree = BuildIntervalTree(c.genes[chrom])
	c.trees[chrom] = tree
	return tree
}

// GetGene returns a gene by ID or symbol, or nil if not found.
func (c *Cache) GetGene(idOrName string) *Gene {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, genes := range c.genes {
		for _, g := range genes {
			if g.ID == idOrName || g.Name == idOrName {
				return g
			}
		}
	}
	return nil
}

// GetTranscript returns a specific transcript by ID, or nil if not found.
func (c *Cache) GetTranscript(id string) *Transcript {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, genes := range c.genes {
		for _, g := range genes {
			for _, t := range g.Transcripts {
				if t.ID == id {
					return t
				}
			}
		}
	}
	return nil
}

// GeneCount returns the total number of genes in the cache.
func (c *Cache) GeneCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, genes := range c.genes {
		count += len(genes)
	}
	return count
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, genes := range c.genes {
		for _, g := range genes {
			count += len(g.Transcripts)
		}
	}
	return count
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	chroms := make([]string, 0, len(c.genes))
	for chrom := range c.genes {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// GenesByChrom returns all genes for a chromosome in load order.
func (c *Cache) GenesByChrom(chrom string) []*Gene {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.genes[chrom]
}
