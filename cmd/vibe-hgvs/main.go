// Package main provides the vibe-hgvs command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// configName is the config file name, without extension, in the home directory.
const configName = ".vibe-hgvs"

func main() {
	os.Exit(run(os.Args[1:]))
}

// usageError marks errors caused by bad command-line usage.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func run(args []string) int {
	var logger *zap.Logger
	root := newRootCmd(&logger)
	root.SetArgs(args)

	err := root.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintf(os.Stderr, "Run 'vibe-hgvs --help' for usage.\n")
		return ExitUsage
	}
	return ExitError
}

func newRootCmd(logger **zap.Logger) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "vibe-hgvs",
		Short: "Transcript-level HGVS nomenclature for genomic variants",
		Long: `vibe-hgvs computes HGVS c./n. descriptions (and p. descriptions for coding
substitutions) of genomic variants against GENCODE transcript models.`,
		Example: `  vibe-hgvs download --assembly GRCh38
  vibe-hgvs calc 12:25245351:C:A
  vibe-hgvs annotate input.vcf.gz -o out.tsv
  vibe-hgvs serve --addr localhost:8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			l, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			*logger = l
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.String("assembly", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	pf.String("gtf", "", "GENCODE GTF annotation file (default: found in the cache directory)")
	pf.String("transcripts-fasta", "", "GENCODE protein-coding transcript FASTA (default: found in the cache directory)")
	pf.String("genome", "", "Reference genome FASTA (default: found in the cache directory)")
	pf.String("cache-dir", "", "Directory holding downloaded files and caches (default: ~/.vibe-hgvs)")
	pf.Bool("no-normalize", false, "Do not normalize variants before computing HGVS")
	pf.Int64("window", 100, "Bases fetched on each side of an indel for 3' justification")
	bindFlags(pf, map[string]string{
		"assembly":          "assembly",
		"gtf":               "gtf",
		"transcripts-fasta": "transcripts_fasta",
		"genome":            "genome",
		"cache-dir":         "cache_dir",
		"window":            "justify.window",
	})

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	loggerFn := func() *zap.Logger { return *logger }
	root.AddCommand(
		newCalcCmd(loggerFn),
		newAnnotateCmd(loggerFn),
		newServeCmd(loggerFn),
		newDownloadCmd(loggerFn),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

// bindFlags binds flags to viper keys. Unknown flags panic, which is a
// programming error.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %q: %v", flag, err))
		}
	}
}

// initConfig reads ~/.vibe-hgvs.yaml and VIBE_HGVS_* environment variables.
// A missing config file is not an error.
func initConfig() error {
	viper.SetDefault("assembly", "GRCh38")
	viper.SetDefault("normalize", true)
	viper.SetDefault("justify.window", 100)
	viper.SetDefault("server.addr", "localhost:8080")

	viper.SetEnvPrefix("VIBE_HGVS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(home)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// cacheDir returns the configured cache directory for the assembly.
func cacheDir() (string, error) {
	dir := viper.GetString("cache_dir")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".vibe-hgvs")
	}
	return filepath.Join(dir, strings.ToLower(viper.GetString("assembly"))), nil
}

// normalizeEnabled combines the normalize config key with --no-normalize.
func normalizeEnabled(cmd *cobra.Command) bool {
	if off, _ := cmd.Flags().GetBool("no-normalize"); off {
		return false
	}
	return viper.GetBool("normalize")
}
