// Package dump extracts the vehicle_generation_i18n rows from a PostgreSQL
// plain-text dump. Only the COPY payload of that one table is read; the scan
// stops at the first end-of-data marker so large dumps are never fully read.
package dump

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"

	"i18nsync/internal/copyfmt"
	"i18nsync/internal/domain"
)

// ErrMissingColumn reports a required column absent from the COPY header or
// from a data line.
var ErrMissingColumn = errors.New("dump: missing column")

var copyHeaderRe = regexp.MustCompile(`^COPY\s+public\.vehicle_generation_i18n\s+\(([^)]+)\)\s+FROM\s+stdin;`)

// endOfData terminates a COPY payload.
const endOfData = `\.`

// readBufSize is the reader buffer. Lines before the COPY header that do not
// fit in it are skipped unread; payload lines may be any length.
const readBufSize = 1 << 20

var requiredColumns = []string{
	"generation_id",
	"locale",
	domain.FieldSummary,
	domain.FieldPros,
	domain.FieldCons,
	domain.FieldInspectionTips,
}

// Options tune the scan.
type Options struct {
	// Strict validates every array cell with PostgreSQL's array grammar and
	// logs a warning for each rejected cell. Decoded output is unaffected.
	Strict bool
}

// Scan reads r until the end of the first vehicle_generation_i18n COPY
// block. A dump without that block yields an empty table. The scan stops
// with ctx.Err() once ctx is cancelled.
func Scan(ctx context.Context, r io.Reader, opts Options) (*Table, error) {
	br := bufio.NewReaderSize(r, readBufSize)

	t := newTable()
	var checker *copyfmt.ArrayChecker
	if opts.Strict {
		checker = copyfmt.NewArrayChecker()
	}

	lineNum := 0
	inPayload := false
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := readLine(br, !inPayload)
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("dump: read: %w", err)
		}
		lineNum++

		if !inPayload {
			m := copyHeaderRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			cols, err := parseColumns(m[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			t.Columns = cols
			inPayload = true
			continue
		}

		if line == endOfData {
			return t, nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := t.decodeLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if checker != nil {
			t.Warnings += checkArrays(checker, rec, lineNum)
		}
		t.put(rec)
	}
}

// readLine returns the next line without its LF or CRLF ending. With
// skipLong set, a line longer than the reader buffer is consumed without
// being kept and comes back empty. io.EOF is returned only when no bytes
// are left.
func readLine(br *bufio.Reader, skipLong bool) (string, error) {
	var buf []byte
	skipped := false
	for {
		frag, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			if skipLong {
				skipped = true
			} else {
				buf = append(buf, frag...)
			}
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if errors.Is(err, io.EOF) && len(frag) == 0 && len(buf) == 0 && !skipped {
			return "", io.EOF
		}
		if skipped {
			return "", nil
		}
		buf = append(buf, frag...)
		line := strings.TrimSuffix(string(buf), "\n")
		return strings.TrimSuffix(line, "\r"), nil
	}
}

// ScanFile opens path and scans it. The file is closed on every path.
func ScanFile(ctx context.Context, path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dump: open %s: %w", path, err)
	}
	defer f.Close()
	return Scan(ctx, f, opts)
}

func parseColumns(list string) ([]string, error) {
	parts := strings.Split(list, ",")
	cols := make([]string, len(parts))
	for i, p := range parts {
		cols[i] = strings.TrimSpace(p)
	}
	for _, want := range requiredColumns {
		found := false
		for _, c := range cols {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w %q in COPY header", ErrMissingColumn, want)
		}
	}
	return cols, nil
}

// decodeLine zips the tab-separated values with the declared columns.
// Surplus values are dropped; short lines leave trailing columns unset.
func (t *Table) decodeLine(line string) (domain.DumpRecord, error) {
	parts := strings.Split(line, "\t")
	values := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		if i >= len(parts) {
			break
		}
		values[c] = parts[i]
	}

	for _, c := range requiredColumns {
		if _, ok := values[c]; !ok {
			return domain.DumpRecord{}, fmt.Errorf("%w %q", ErrMissingColumn, c)
		}
	}

	rec := domain.DumpRecord{
		Key: domain.TranslationKey{
			GenerationID: values["generation_id"],
			Locale:       values["locale"],
		},
		Pros:           values[domain.FieldPros],
		Cons:           values[domain.FieldCons],
		InspectionTips: values[domain.FieldInspectionTips],
	}
	if s := values[domain.FieldSummary]; s != domain.NullMarker {
		rec.Summary = &s
	}
	for _, c := range requiredColumns {
		delete(values, c)
	}
	if len(values) > 0 {
		rec.Extra = values
	}
	return rec, nil
}

func checkArrays(c *copyfmt.ArrayChecker, rec domain.DumpRecord, lineNum int) int {
	n := 0
	for _, f := range domain.ListFields {
		if err := c.CheckArray(rec.List(f)); err != nil {
			log.Printf("dump: line %d %s %s: %v", lineNum, rec.Key, f, err)
			n++
		}
	}
	return n
}
