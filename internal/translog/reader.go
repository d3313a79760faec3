// Package translog reads the per-field translation log written by the
// vehicle i18n expansion job and folds it into one entry per
// (generation_id, locale).
package translog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrMissingColumn reports a required column absent from the header or a row.
var ErrMissingColumn = errors.New("translog: missing column")

// Column names the aggregation depends on.
const (
	ColGenerationID = "generation_id"
	ColLocale       = "locale_written"
	ColField        = "field_name"
	ColSnippet      = "translated_snippet"
)

var requiredColumns = []string{ColGenerationID, ColLocale, ColField, ColSnippet}

// Row is one observation from the log.
type Row struct {
	GenerationID string
	Locale       string
	Field        string
	Snippet      string
}

// ReadRows parses CSV with a header line. A leading UTF-8 BOM is ignored.
// Rows may carry any number of extra columns, but a row too short to hold a
// required column aborts the read.
func ReadRows(r io.Reader) ([]Row, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty log, no header", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("translog: read header: %w", err)
	}
	idx := make(map[string]int, len(head))
	for i, h := range head {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	pos := make([]int, len(requiredColumns))
	for i, c := range requiredColumns {
		p, ok := idx[c]
		if !ok {
			return nil, fmt.Errorf("%w %q in header", ErrMissingColumn, c)
		}
		pos[i] = p
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("translog: read: %w", err)
		}
		for i, p := range pos {
			if p >= len(rec) {
				line, _ := cr.FieldPos(0)
				return nil, fmt.Errorf("line %d: %w %q", line, ErrMissingColumn, requiredColumns[i])
			}
		}
		rows = append(rows, Row{
			GenerationID: rec[pos[0]],
			Locale:       rec[pos[1]],
			Field:        rec[pos[2]],
			Snippet:      rec[pos[3]],
		})
	}
	return rows, nil
}

// ReadFile opens path and reads its rows. The file is closed on every path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("translog: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRows(f)
}
