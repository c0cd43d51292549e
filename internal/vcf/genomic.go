package vcf

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Genomic variant: chr12:25245350:C:A, 12-25245350-C-A, chr12:25245350:C>A.
// An empty allele may be written as "-" or ".".
var reGenomic = regexp.MustCompile(`^(?:chr)?(\w+)[:\-](\d+)[:\-]([ACGTNacgtn]+|[-.]?)[>:/]([ACGTNacgtn]+|[-.]?)$`)

// reGenomicDash handles the dash-separated form, which cannot carry "-" alleles.
var reGenomicDash = regexp.MustCompile(`^(?:chr)?(\w+)-(\d+)-([ACGTNacgtn]+)-([ACGTNacgtn]+)$`)

// ParseGenomic parses a genomic variant specification such as
// "12:25245351:C:A" or "1:1000:-:TTG". Alleles are upper-cased.
func ParseGenomic(input string) (Variant, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Variant{}, fmt.Errorf("empty variant specification")
	}

	m := reGenomicDash.FindStringSubmatch(input)
	if m == nil {
		m = reGenomic.FindStringSubmatch(input)
	}
	if m == nil {
		return Variant{}, fmt.Errorf("cannot parse variant %q (expected chrom:pos:ref:alt)", input)
	}
	pos, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Variant{}, fmt.Errorf("parse position %q: %w", m[2], err)
	}
	return New(m[1], pos, cleanAllele(m[3]), cleanAllele(m[4])), nil
}

func cleanAllele(a string) string {
	if a == "-" || a == "." {
		return ""
	}
	return strings.ToUpper(a)
}

// ListReader reads one genomic variant specification per line. Blank lines
// and lines starting with '#' are skipped.
type ListReader struct {
	scanner    *bufio.Scanner
	closer     io.Closer
	lineNumber int
}

// NewListReader creates a reader over r. If r is an io.Closer it is closed by Close.
func NewListReader(r io.Reader) *ListReader {
	lr := &ListReader{scanner: bufio.NewScanner(r)}
	if c, ok := r.(io.Closer); ok {
		lr.closer = c
	}
	return lr
}

// Next returns the next variant, or nil, nil at end of input.
func (r *ListReader) Next() (*Variant, error) {
	for r.scanner.Scan() {
		r.lineNumber++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := ParseGenomic(line)
		if err != nil {
			return nil, &ParseError{Line: r.lineNumber, Message: err.Error()}
		}
		return &v, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read variant list: %w", err)
	}
	return nil, nil
}

// Close closes the underlying reader if it is closable.
func (r *ListReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// LineNumber returns the current line number being processed.
func (r *ListReader) LineNumber() int {
	return r.lineNumber
}
