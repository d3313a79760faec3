package translog

import (
	"strings"

	"i18nsync/internal/domain"
)

// Mode selects how snippets are folded.
type Mode int

const (
	// ModeRaw keeps snippets verbatim, including empty ones. The compare
	// tool uses it so the log is inspected exactly as written.
	ModeRaw Mode = iota
	// ModeTrimmed trims snippets and skips empty ones. The migration
	// generator uses it so blank output never reaches SQL.
	ModeTrimmed
)

// Aggregate maps keys to entries in first-seen order.
type Aggregate struct {
	order   []domain.TranslationKey
	entries map[domain.TranslationKey]*domain.LogEntry
}

// Fold aggregates rows. Every row registers its key, even when its snippet
// is skipped or its field name is unknown. The summary is taken from the
// first summary row with a non-empty snippet; list fields keep the first
// occurrence of each snippet.
func Fold(rows []Row, mode Mode) *Aggregate {
	a := &Aggregate{entries: make(map[domain.TranslationKey]*domain.LogEntry)}
	for _, r := range rows {
		e := a.entry(domain.TranslationKey{GenerationID: r.GenerationID, Locale: r.Locale})

		snippet := r.Snippet
		if mode == ModeTrimmed {
			snippet = strings.TrimSpace(snippet)
			if snippet == "" {
				continue
			}
		}

		if r.Field == domain.FieldSummary {
			if e.Summary == "" {
				e.Summary = snippet
			}
			continue
		}
		e.AddUnique(r.Field, snippet)
	}
	return a
}

func (a *Aggregate) entry(k domain.TranslationKey) *domain.LogEntry {
	if e, ok := a.entries[k]; ok {
		return e
	}
	e := &domain.LogEntry{}
	a.entries[k] = e
	a.order = append(a.order, k)
	return e
}

// Get returns the entry for k.
func (a *Aggregate) Get(k domain.TranslationKey) (*domain.LogEntry, bool) {
	e, ok := a.entries[k]
	return e, ok
}

// Keys returns the keys in first-seen order.
func (a *Aggregate) Keys() []domain.TranslationKey {
	out := make([]domain.TranslationKey, len(a.order))
	copy(out, a.order)
	return out
}

func (a *Aggregate) Len() int { return len(a.order) }

// Each calls fn for every entry in first-seen order.
func (a *Aggregate) Each(fn func(k domain.TranslationKey, e *domain.LogEntry)) {
	for _, k := range a.order {
		fn(k, a.entries[k])
	}
}
