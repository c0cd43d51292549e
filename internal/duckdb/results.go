package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/multierr"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// resultKey is the composite key for deduplicating results before writing.
// Settings are fixed for one write, so they are not part of it.
type resultKey struct {
	chrom, ref, alt string
	pos             int64
}

func keyOf(v vcf.Variant) resultKey {
	return resultKey{chrom: v.NormalizeChrom(), ref: v.Ref, alt: v.Alt, pos: v.Start}
}

// WriteResults batch-inserts results computed under settings into DuckDB
// using the Appender API. Duplicate variants are deduplicated before
// writing; the first one wins.
func (s *Store) WriteResults(settings annotate.Settings, results []annotate.Result) (err error) {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[resultKey]bool, len(results))
	deduped := make([]annotate.Result, 0, len(results))
	for _, r := range results {
		k := keyOf(r.Variant)
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var variants, strs *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		if variants, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "hgvs_variants"); err != nil {
			return err
		}
		strs, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "hgvs_results")
		if err != nil {
			variants.Close()
		}
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	// Close flushes; its error is the write error.
	defer func() {
		err = multierr.Combine(err, variants.Close(), strs.Close())
	}()

	for _, r := range deduped {
		k := keyOf(r.Variant)
		if err := variants.AppendRow(k.chrom, k.pos, k.ref, k.alt,
			settings.Normalize, settings.Window, int32(len(r.HGVS))); err != nil {
			return fmt.Errorf("append variant: %w", err)
		}
		for i, h := range r.HGVS {
			if err := strs.AppendRow(k.chrom, k.pos, k.ref, k.alt,
				settings.Normalize, settings.Window, int32(i), h); err != nil {
				return fmt.Errorf("append hgvs: %w", err)
			}
		}
	}
	return nil
}

// Lookup returns the cached HGVS strings of v in their original order. ok
// is false when the variant was never computed under settings.
func (s *Store) Lookup(v vcf.Variant, settings annotate.Settings) (hgvs []string, ok bool, err error) {
	k := keyOf(v)

	var n int32
	err = s.db.QueryRow(`SELECT n_results FROM hgvs_variants
		WHERE chrom=? AND pos=? AND ref=? AND alt=? AND normalize=? AND "window"=?`,
		k.chrom, k.pos, k.ref, k.alt, settings.Normalize, settings.Window).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query variant: %w", err)
	}
	if n == 0 {
		return nil, true, nil
	}

	rows, err := s.db.Query(`SELECT hgvs FROM hgvs_results
		WHERE chrom=? AND pos=? AND ref=? AND alt=? AND normalize=? AND "window"=?
		ORDER BY idx`,
		k.chrom, k.pos, k.ref, k.alt, settings.Normalize, settings.Window)
	if err != nil {
		return nil, false, fmt.Errorf("query hgvs: %w", err)
	}
	defer rows.Close()

	hgvs = make([]string, 0, n)
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, false, fmt.Errorf("scan hgvs: %w", err)
		}
		hgvs = append(hgvs, h)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate hgvs: %w", err)
	}
	return hgvs, true, nil
}

// SearchByTranscript returns results cached under settings with an HGVS
// string on the given transcript.
func (s *Store) SearchByTranscript(transcriptID string, settings annotate.Settings) ([]annotate.Result, error) {
	rows, err := s.db.Query(`SELECT chrom, pos, ref, alt, hgvs FROM hgvs_results
		WHERE starts_with(hgvs, ?) AND normalize=? AND "window"=?
		ORDER BY chrom, pos, ref, alt, idx`, transcriptID+"(", settings.Normalize, settings.Window)
	if err != nil {
		return nil, fmt.Errorf("query by transcript: %w", err)
	}
	defer rows.Close()

	var results []annotate.Result
	for rows.Next() {
		var chrom, ref, alt, h string
		var pos int64
		if err := rows.Scan(&chrom, &pos, &ref, &alt, &h); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		v := vcf.New(chrom, pos, ref, alt)
		if n := len(results); n > 0 && results[n-1].Variant.Key() == v.Key() {
			results[n-1].HGVS = append(results[n-1].HGVS, h)
			continue
		}
		results = append(results, annotate.Result{Variant: v, HGVS: []string{h}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// ClearResults removes all cached results.
func (s *Store) ClearResults() error {
	if _, err := s.db.Exec("DELETE FROM hgvs_results"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM hgvs_variants")
	return err
}

// ResultCount returns the number of cached variants.
func (s *Store) ResultCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT count(*) FROM hgvs_variants").Scan(&n)
	return n, err
}
