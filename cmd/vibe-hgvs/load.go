package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/duckdb"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/protein"
)

// sourceFiles are the input files of a gene model. Only GTF is required.
type sourceFiles struct {
	GTF         string
	Transcripts string
	Genome      string
}

// resolveSources takes paths from config, falling back to the files
// downloaded into dir.
func resolveSources(dir string) (sourceFiles, error) {
	src := sourceFiles{
		GTF:         viper.GetString("gtf"),
		Transcripts: viper.GetString("transcripts_fasta"),
		Genome:      viper.GetString("genome"),
	}
	found := findGENCODEFiles(dir, viper.GetString("assembly"))
	if src.GTF == "" {
		src.GTF = found.GTF
	}
	if src.Transcripts == "" {
		src.Transcripts = found.Transcripts
	}
	if src.Genome == "" {
		src.Genome = found.Genome
	}
	if src.GTF == "" {
		return src, fmt.Errorf("no GENCODE GTF found for %s in %s (run 'vibe-hgvs download' or set --gtf)",
			viper.GetString("assembly"), dir)
	}
	return src, nil
}

// findGENCODEFiles looks for downloaded GENCODE files in dir. Missing files
// are left empty.
func findGENCODEFiles(dir, assembly string) sourceFiles {
	gtfPattern := "gencode.v*.annotation.gtf.gz"
	fastaPattern := "gencode.v*.pc_transcripts.fa.gz"
	if strings.EqualFold(assembly, "GRCh37") {
		gtfPattern = "gencode.v*lift37.annotation.gtf.gz"
		fastaPattern = "gencode.v*lift37.pc_transcripts.fa.gz"
	}

	var src sourceFiles
	src.GTF = firstMatch(filepath.Join(dir, gtfPattern))
	src.Transcripts = firstMatch(filepath.Join(dir, fastaPattern))
	src.Genome = firstMatch(filepath.Join(dir, genomeFileName(assembly)))
	return src
}

func firstMatch(pattern string) string {
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// loadGenes builds the gene model from src, using the gob cache in dir when
// it was built from the same files. Transcript sequences are attached and
// translated before caching.
func loadGenes(dir string, src sourceFiles, logger *zap.Logger) (*cache.Cache, error) {
	var fingerprints []duckdb.FileFingerprint
	for _, p := range []string{src.GTF, src.Transcripts} {
		fp, err := duckdb.StatFile(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		fingerprints = append(fingerprints, fp)
	}

	c := cache.New()
	gc := duckdb.NewGeneCache(dir)
	if gc.Valid(fingerprints...) {
		start := time.Now()
		err := gc.Load(c)
		if err == nil {
			logger.Info("loaded gene cache",
				zap.Int("transcripts", c.TranscriptCount()),
				zap.Duration("elapsed", time.Since(start)))
			return c, nil
		}
		logger.Warn("gene cache unreadable, rebuilding", zap.Error(err))
		c = cache.New()
	}

	start := time.Now()
	logger.Info("loading GTF", zap.String("path", src.GTF))
	if err := cache.NewGTFLoader(src.GTF).Load(c); err != nil {
		return nil, fmt.Errorf("load GTF: %w", err)
	}

	if src.Transcripts != "" {
		logger.Info("loading transcript sequences", zap.String("path", src.Transcripts))
		fl := cache.NewFASTALoader(src.Transcripts)
		if err := fl.Load(); err != nil {
			return nil, fmt.Errorf("load transcript FASTA: %w", err)
		}
		n := fl.Apply(c)
		translated := protein.TranslateTranscripts(c)
		logger.Info("attached CDS sequences",
			zap.Int("sequences", n),
			zap.Int("translated", translated))
	} else {
		logger.Warn("no transcript FASTA, protein HGVS disabled")
	}

	logger.Info("loaded gene model",
		zap.Int("genes", c.GeneCount()),
		zap.Int("transcripts", c.TranscriptCount()),
		zap.Duration("elapsed", time.Since(start)))

	if err := gc.Write(c, fingerprints...); err != nil {
		logger.Warn("could not write gene cache", zap.Error(err))
	}
	return c, nil
}

// loadGenome reads the reference genome, or returns an empty genome when
// none is configured. Without a genome indels cannot be justified and are
// skipped per transcript.
func loadGenome(path string, logger *zap.Logger) (*cache.Genome, error) {
	if path == "" {
		logger.Warn("no reference genome, indels will not be described")
		return cache.NewGenome(), nil
	}
	start := time.Now()
	g, err := cache.LoadGenome(path)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded reference genome",
		zap.String("path", path),
		zap.Int("chromosomes", g.Chromosomes()),
		zap.Duration("elapsed", time.Since(start)))
	return g, nil
}

// newCalculator wires the HGVS calculator with protein output.
func newCalculator(seq hgvs.SequenceProvider, logger *zap.Logger) *hgvs.Calculator {
	calc := hgvs.NewCalculator(seq)
	calc.SetWindow(viper.GetInt64("justify.window"))
	calc.SetLogger(logger)

	pc := protein.NewCalculator()
	pc.SetLogger(logger)
	calc.SetProteinCalculator(pc)
	return calc
}

// environment is the loaded gene model and the calculator over it.
type environment struct {
	genes *cache.Cache
	calc  *hgvs.Calculator
}

// loadEnvironment resolves sources, loads genes and genome, and builds the
// calculator.
func loadEnvironment(logger *zap.Logger) (*environment, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	src, err := resolveSources(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(src.GTF); err != nil {
		return nil, fmt.Errorf("GTF file: %w", err)
	}

	genes, err := loadGenes(dir, src, logger)
	if err != nil {
		return nil, err
	}
	genome, err := loadGenome(src.Genome, logger)
	if err != nil {
		return nil, err
	}
	return &environment{genes: genes, calc: newCalculator(genome, logger)}, nil
}
