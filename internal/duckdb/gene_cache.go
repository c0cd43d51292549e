package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// GeneCache manages gob-serialized gene models on disk, stored alongside
// the source files:
//
//	~/.vibe-hgvs/{assembly}/genes.gob       (serialized genes)
//	~/.vibe-hgvs/{assembly}/genes.gob.meta  (source file fingerprints)
type GeneCache struct {
	dir string // cache directory (e.g. ~/.vibe-hgvs/grch38)
}

// NewGeneCache creates a gene cache for the given directory.
func NewGeneCache(dir string) *GeneCache {
	return &GeneCache{dir: dir}
}

func (gc *GeneCache) gobPath() string {
	return filepath.Join(gc.dir, "genes.gob")
}

func (gc *GeneCache) metaPath() string {
	return filepath.Join(gc.dir, "genes.gob.meta")
}

// Valid checks whether the cached genes were built from the given sources.
// Sources are compared in order.
func (gc *GeneCache) Valid(sources ...FileFingerprint) bool {
	meta, err := gc.readMeta()
	if err != nil {
		return false
	}

	if meta["sources"] != strconv.Itoa(len(sources)) {
		return false
	}
	for i, fp := range sources {
		for k, v := range fingerprintFields(i, fp) {
			if meta[k] != v {
				return false
			}
		}
	}

	if _, err := os.Stat(gc.gobPath()); err != nil {
		return false
	}
	return true
}

// Load reads serialized genes from disk into the cache.
func (gc *GeneCache) Load(c *cache.Cache) error {
	f, err := os.Open(gc.gobPath())
	if err != nil {
		return fmt.Errorf("open gene cache: %w", err)
	}
	defer f.Close()

	var data map[string][]*cache.Gene
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("decode gene cache: %w", err)
	}

	for _, genes := range data {
		for _, g := range genes {
			c.AddGene(g)
		}
	}
	return nil
}

// Write serializes all genes from the cache to disk.
func (gc *GeneCache) Write(c *cache.Cache, sources ...FileFingerprint) error {
	data := make(map[string][]*cache.Gene)
	for _, chrom := range c.Chromosomes() {
		data[chrom] = c.GenesByChrom(chrom)
	}

	if err := os.MkdirAll(gc.dir, 0755); err != nil {
		return fmt.Errorf("create gene cache directory: %w", err)
	}
	f, err := os.Create(gc.gobPath())
	if err != nil {
		return fmt.Errorf("create gene cache: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		os.Remove(gc.gobPath())
		return fmt.Errorf("encode gene cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close gene cache: %w", err)
	}

	return gc.writeMeta(sources)
}

// Clear removes the cached gene files.
func (gc *GeneCache) Clear() {
	os.Remove(gc.gobPath())
	os.Remove(gc.metaPath())
}

func fingerprintFields(i int, fp FileFingerprint) map[string]string {
	prefix := "source" + strconv.Itoa(i)
	return map[string]string{
		prefix + "_size":    strconv.FormatInt(fp.Size, 10),
		prefix + "_modtime": fp.ModTime.UTC().Format(time.RFC3339Nano),
	}
}

func (gc *GeneCache) writeMeta(sources []FileFingerprint) error {
	lines := []string{"sources=" + strconv.Itoa(len(sources))}
	for i, fp := range sources {
		prefix := "source" + strconv.Itoa(i)
		lines = append(lines, prefix+"_path="+fp.Path)
		for k, v := range fingerprintFields(i, fp) {
			lines = append(lines, k+"="+v)
		}
	}
	lines = append(lines, "created_at="+time.Now().UTC().Format(time.RFC3339), "")
	return os.WriteFile(gc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (gc *GeneCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(gc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
