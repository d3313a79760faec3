// Package migration renders the aggregated translation log as a single
// transactional upsert into public.vehicle_generation_i18n.
//
// Conflict policy: an incoming NULL summary or empty array never erases
// what the table already holds.
package migration

import (
	"errors"
	"fmt"
	"strings"

	"i18nsync/internal/domain"
	"i18nsync/internal/translog"
)

// ErrNoRows is returned when there is nothing to upsert; an insert with an
// empty values list is not valid SQL.
var ErrNoRows = errors.New("migration: no rows to upsert")

const headerComment = "-- Sync vehicle_generation_i18n content from latest localisation log"

// Options adds optional provenance to the script.
type Options struct {
	// Source, when set, adds a comment naming the input log and its digest.
	Source string
	Digest uint64
}

// QuoteLiteral escapes s for a single-quoted SQL string by doubling quotes.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ArraySQL renders items as a text[] constructor.
func ArraySQL(items []string) string {
	if len(items) == 0 {
		return "ARRAY[]::text[]"
	}
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = QuoteLiteral(s)
	}
	return "ARRAY[" + strings.Join(q, ", ") + "]"
}

// Render builds the script. Rows follow the aggregate's key order so the
// output is stable across runs.
func Render(agg *translog.Aggregate, opts Options) (string, error) {
	if agg.Len() == 0 {
		return "", ErrNoRows
	}

	lines := []string{headerComment}
	if opts.Source != "" {
		lines = append(lines, fmt.Sprintf("-- source: %s (xxh3 %016x)", opts.Source, opts.Digest))
	}
	lines = append(lines,
		"begin;",
		"insert into "+domain.Table+" (generation_id, locale, summary, pros, cons, inspection_tips) values",
	)

	n := agg.Len()
	i := 0
	agg.Each(func(k domain.TranslationKey, e *domain.LogEntry) {
		summary := "NULL"
		if e.Summary != "" {
			summary = QuoteLiteral(e.Summary)
		}
		v := fmt.Sprintf("  (%s, %s, %s, %s, %s, %s)",
			QuoteLiteral(k.GenerationID), QuoteLiteral(k.Locale), summary,
			ArraySQL(e.Pros), ArraySQL(e.Cons), ArraySQL(e.InspectionTips))
		if i < n-1 {
			v += ","
		}
		lines = append(lines, v)
		i++
	})

	lines = append(lines,
		"on conflict (generation_id, locale) do update set",
		"  summary = coalesce(excluded.summary, "+domain.Table+".summary),",
	)
	for j, f := range domain.ListFields {
		end := ","
		if j == len(domain.ListFields)-1 {
			end = ";"
		}
		lines = append(lines, fmt.Sprintf(
			"  %[1]s = case when coalesce(array_length(excluded.%[1]s, 1), 0) = 0 then %[2]s.%[1]s else excluded.%[1]s end%[3]s",
			f, domain.Table, end))
	}
	lines = append(lines, "commit;")
	return strings.Join(lines, "\n"), nil
}
