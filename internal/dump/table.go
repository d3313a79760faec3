package dump

import "i18nsync/internal/domain"

// Table is the decoded COPY block: declared columns plus records keyed by
// (generation_id, locale) in first-seen order.
type Table struct {
	Columns []string
	// Warnings counts array cells rejected by the strict check.
	Warnings int

	order []domain.TranslationKey
	rows  map[domain.TranslationKey]domain.DumpRecord
}

func newTable() *Table {
	return &Table{rows: make(map[domain.TranslationKey]domain.DumpRecord)}
}

// put stores rec; a later duplicate replaces the earlier record but keeps
// its position.
func (t *Table) put(rec domain.DumpRecord) {
	if _, ok := t.rows[rec.Key]; !ok {
		t.order = append(t.order, rec.Key)
	}
	t.rows[rec.Key] = rec
}

// Get returns the record for k.
func (t *Table) Get(k domain.TranslationKey) (domain.DumpRecord, bool) {
	rec, ok := t.rows[k]
	return rec, ok
}

// Keys returns the keys in first-seen order.
func (t *Table) Keys() []domain.TranslationKey {
	out := make([]domain.TranslationKey, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Table) Len() int { return len(t.order) }
