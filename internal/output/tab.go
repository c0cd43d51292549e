// Package output provides HGVS result formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// TabWriter writes HGVS results in tab-delimited format, one row per HGVS
// string.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Uploaded_variation",
			"Location",
			"Ref",
			"Alt",
			"Feature",
			"Gene",
			"HGVS",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes the HGVS strings of a variant. A variant without results is
// written as a single row with empty fields.
func (tw *TabWriter) Write(v *vcf.Variant, hgvs []string) error {
	if len(hgvs) == 0 {
		return tw.writeRow(v, "-")
	}
	for _, h := range hgvs {
		if err := tw.writeRow(v, h); err != nil {
			return err
		}
	}
	return nil
}

func (tw *TabWriter) writeRow(v *vcf.Variant, hgvs string) error {
	location := fmt.Sprintf("%s:%d", v.Chrom, v.Start)
	if v.End > v.Start {
		location = fmt.Sprintf("%s:%d-%d", v.Chrom, v.Start, v.End)
	}

	feature, gene := SplitFeature(hgvs)
	values := []string{
		v.Key(),
		location,
		dash(v.Ref),
		dash(v.Alt),
		dash(feature),
		dash(gene),
		hgvs,
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// SplitFeature returns the feature identifier and gene of an HGVS string,
// e.g. "ENST01(ENSG01):c.1A>G" yields ("ENST01", "ENSG01") and
// "ENSP01:p.Met1?" yields ("ENSP01", "").
func SplitFeature(hgvs string) (feature, gene string) {
	prefix, _, ok := strings.Cut(hgvs, ":")
	if !ok {
		return "", ""
	}
	if i := strings.IndexByte(prefix, '('); i >= 0 && strings.HasSuffix(prefix, ")") {
		return prefix[:i], prefix[i+1 : len(prefix)-1]
	}
	return prefix, ""
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
