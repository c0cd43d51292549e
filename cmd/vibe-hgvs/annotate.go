package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/duckdb"
	"github.com/inodb/vibe-hgvs/internal/maf"
	"github.com/inodb/vibe-hgvs/internal/output"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

func newAnnotateCmd(logger func() *zap.Logger) *cobra.Command {
	var (
		outputFile  string
		inputFormat string
		cacheDB     string
		profileDir  string
	)

	cmd := &cobra.Command{
		Use:   "annotate <input-file>",
		Short: "Compute HGVS for every variant in a VCF, MAF or variant list",
		Long: `Compute HGVS for every variant in a VCF or MAF file (plain or gzipped)
or a list of chrom:pos:ref:alt variants, one per line. Output is tab-delimited with
one row per HGVS string. Use '-' to read from stdin.`,
		Example: `  vibe-hgvs annotate input.vcf.gz
  vibe-hgvs annotate -o out.tsv --workers 8 input.vcf
  vibe-hgvs annotate --cache-db results.duckdb input.vcf
  cat variants.txt | vibe-hgvs annotate --input-format list -`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if profileDir != "" {
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(profileDir), profile.Quiet).Stop()
			}
			log := logger()

			format := inputFormat
			if format == "" {
				format = detectInputFormat(args[0])
			}
			parser, err := openParser(args[0], format)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, parser.Close()) }()

			env, err := loadEnvironment(log)
			if err != nil {
				return err
			}

			ann := annotate.NewAnnotator(env.genes, env.calc)
			ann.SetLogger(log)
			ann.SetNormalize(normalizeEnabled(cmd))
			ann.SetWorkers(viper.GetInt("workers"))

			if cacheDB != "" {
				store, openErr := duckdb.Open(cacheDB)
				if openErr != nil {
					return fmt.Errorf("open result cache: %w", openErr)
				}
				defer func() { err = multierr.Append(err, store.Close()) }()
				ann.SetResultCache(store)
			}

			out := cmd.OutOrStdout()
			if outputFile != "" {
				f, createErr := os.Create(outputFile)
				if createErr != nil {
					return fmt.Errorf("create output file: %w", createErr)
				}
				defer func() { err = multierr.Append(err, f.Close()) }()
				out = f
			}

			stats, err := ann.AnnotateAll(cmd.Context(), parser, output.NewTabWriter(out))
			if err != nil {
				return err
			}
			if stats.Failed > 0 {
				log.Warn("some variants could not be annotated", zap.Int("failed", stats.Failed))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	f.StringVar(&inputFormat, "input-format", "", "Input format: vcf, maf or list (auto-detected if not specified)")
	f.StringVar(&cacheDB, "cache-db", "", "DuckDB file caching computed HGVS across runs")
	f.StringVar(&profileDir, "profile", "", "Write a CPU profile to this directory")
	f.Int("workers", 0, "Number of annotation workers (default: number of CPUs)")
	bindFlags(f, map[string]string{"workers": "workers"})
	return cmd
}

func openParser(path, format string) (vcf.VariantParser, error) {
	switch format {
	case "vcf":
		return vcf.NewParser(path)
	case "maf":
		return maf.NewParser(path)
	case "list":
		if path == "-" {
			return vcf.NewListReader(os.Stdin), nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open variant list: %w", err)
		}
		return vcf.NewListReader(f), nil
	}
	return nil, &usageError{fmt.Errorf("unknown input format %q (use vcf, maf or list)", format)}
}

// detectInputFormat detects the input format based on extension or content.
func detectInputFormat(path string) string {
	lower := strings.TrimSuffix(strings.ToLower(path), ".gz")
	if strings.HasSuffix(lower, ".vcf") {
		return "vcf"
	}
	if strings.HasSuffix(lower, ".maf") {
		return "maf"
	}
	// cBioPortal MAF filenames
	switch filepath.Base(lower) {
	case "data_mutations.txt", "data_mutations_extended.txt":
		return "maf"
	}
	if path == "-" {
		return "vcf"
	}

	file, err := os.Open(path)
	if err != nil {
		return "vcf"
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	content := string(buf[:n])
	if n >= 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		return "vcf"
	}
	if strings.HasPrefix(content, "##fileformat=VCF") || strings.HasPrefix(content, "#CHROM") {
		return "vcf"
	}
	if strings.Contains(content, maf.ColStartPosition) {
		return "maf"
	}
	return "list"
}
