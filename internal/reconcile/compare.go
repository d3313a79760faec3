// Package reconcile compares the dumped vehicle_generation_i18n table with
// the aggregated translation log.
//
// The comparison is asymmetric on purpose: the log is authoritative for
// presence (a value it carries must be in the dump), the dump is
// authoritative for absence (a value the log lacks is never reported).
package reconcile

import (
	"fmt"
	"io"
	"strings"

	"i18nsync/internal/copyfmt"
	"i18nsync/internal/domain"
	"i18nsync/internal/dump"
	"i18nsync/internal/translog"
)

// DefaultSampleLimit is how many diffs Print shows by default.
const DefaultSampleLimit = 10

// Report is the outcome of Compare.
type Report struct {
	LogKeys  int
	DumpKeys int
	// MissingInBackup lists log keys absent from the dump, in log order.
	MissingInBackup []domain.TranslationKey
	// MissingInLog lists dump keys absent from the log, in dump order.
	MissingInLog []domain.TranslationKey
	Diffs        []domain.Diff
}

// Compare builds the three-way report between dump and log.
func Compare(tbl *dump.Table, agg *translog.Aggregate) Report {
	rep := Report{LogKeys: agg.Len(), DumpKeys: tbl.Len()}

	agg.Each(func(k domain.TranslationKey, e *domain.LogEntry) {
		rec, ok := tbl.Get(k)
		if !ok {
			rep.MissingInBackup = append(rep.MissingInBackup, k)
			return
		}
		rep.Diffs = append(rep.Diffs, diffRecord(rec, e)...)
	})

	for _, k := range tbl.Keys() {
		if _, ok := agg.Get(k); !ok {
			rep.MissingInLog = append(rep.MissingInLog, k)
		}
	}
	return rep
}

func diffRecord(rec domain.DumpRecord, e *domain.LogEntry) []domain.Diff {
	var out []domain.Diff

	if e.Summary != "" {
		switch {
		case rec.Summary == nil:
			out = append(out, domain.Diff{Key: rec.Key, Field: domain.FieldSummary, LogText: e.Summary})
		case *rec.Summary != "" && strings.TrimSpace(*rec.Summary) != strings.TrimSpace(e.Summary):
			out = append(out, domain.Diff{Key: rec.Key, Field: domain.FieldSummary, DumpText: rec.Summary, LogText: e.Summary})
		}
	}

	for _, f := range domain.ListFields {
		logList := e.List(f)
		if len(logList) == 0 {
			continue
		}
		dumpList, _ := copyfmt.DecodeArray(rec.List(f))
		if dumpList == nil {
			dumpList = []string{}
		}
		if len(dumpList) == 0 || !equalTrimmed(dumpList, logList) {
			out = append(out, domain.Diff{Key: rec.Key, Field: f, DumpList: dumpList, LogList: logList})
		}
	}
	return out
}

func equalTrimmed(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}

// Print writes the counts and at most limit sample diffs to w.
// A negative limit prints every diff.
func (r Report) Print(w io.Writer, limit int) error {
	lines := []string{
		fmt.Sprintf("log combos: %d", r.LogKeys),
		fmt.Sprintf("backup combos: %d", r.DumpKeys),
		fmt.Sprintf("missing_in_backup: %d", len(r.MissingInBackup)),
		fmt.Sprintf("missing_in_log: %d", len(r.MissingInLog)),
		fmt.Sprintf("content diffs: %d", len(r.Diffs)),
	}
	samples := r.Diffs
	if limit >= 0 && len(samples) > limit {
		samples = samples[:limit]
	}
	for _, d := range samples {
		lines = append(lines, d.String())
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
