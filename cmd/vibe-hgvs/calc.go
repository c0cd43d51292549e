package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/output"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

func newCalcCmd(logger func() *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "calc <variant>...",
		Short: "Compute HGVS for variants given on the command line",
		Long: `Compute transcript and protein HGVS for one or more genomic variants
written as chrom:pos:ref:alt. Empty alleles are written as '-'.`,
		Example: `  vibe-hgvs calc 12:25245351:C:A
  vibe-hgvs calc chr7:140753336:A:T 1:1000:-:TTG`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			variants, err := parseVariants(args)
			if err != nil {
				return &usageError{err}
			}
			env, err := loadEnvironment(logger())
			if err != nil {
				return err
			}
			ann := annotate.NewAnnotator(env.genes, env.calc)
			ann.SetLogger(logger())
			ann.SetNormalize(normalizeEnabled(cmd))
			return runCalc(cmd, ann, variants, cmd.OutOrStdout())
		},
	}
}

func parseVariants(args []string) ([]vcf.Variant, error) {
	variants := make([]vcf.Variant, 0, len(args))
	for _, a := range args {
		v, err := vcf.ParseGenomic(a)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func runCalc(cmd *cobra.Command, ann *annotate.Annotator, variants []vcf.Variant, out io.Writer) error {
	w := output.NewTabWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for i := range variants {
		v := &variants[i]
		hgvs, err := ann.Annotate(cmd.Context(), v)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Key(), err)
		}
		if err := w.Write(v, hgvs); err != nil {
			return err
		}
	}
	return w.Flush()
}
