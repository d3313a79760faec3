// Package copyfmt decodes values as they appear in the text payload of a
// PostgreSQL COPY block: the \N null marker, backslash escapes and
// text-array literals such as {a,"b,c",NULL}.
//
// DecodeArray is deliberately forgiving. It never fails and produces a
// best-effort split for malformed literals; CheckArray is the strict
// counterpart used only for diagnostics.
package copyfmt

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"i18nsync/internal/domain"
)

// DecodeArray splits a text-array literal into its elements.
// It returns ok=false for the null marker and an empty, non-nil slice for {}.
//
// Scanning rules: a backslash makes the next byte literal, an unescaped
// double quote toggles quoting, a comma outside quotes ends the element.
// Inside quotes a doubled quote ("") stands for one quote, so
// {"a,b","c""d"} decodes to ["a,b", `c"d`]. Bytes are copied as they are;
// invalid UTF-8 survives the decode unchanged.
func DecodeArray(field string) (items []string, ok bool) {
	if field == domain.NullMarker {
		return nil, false
	}
	if field == "{}" {
		return []string{}, true
	}
	inner := strings.Trim(field, "{}")
	if inner == "" {
		return []string{}, true
	}

	var cur strings.Builder
	inQuotes := false
	escaped := false
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		switch {
		case escaped:
			cur.WriteByte(ch)
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			if inQuotes && i+1 < len(inner) && inner[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			items = append(items, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(items, cur.String()), true
}

// EncodeArray renders items as a text-array literal with every element
// quoted. A nil or empty slice renders as {}.
func EncodeArray(items []string) string {
	if len(items) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, s := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		for _, ch := range s {
			if ch == '"' || ch == '\\' {
				b.WriteByte('\\')
			}
			b.WriteRune(ch)
		}
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

// ArrayChecker validates array cells with pgx's text[] parser, which follows
// PostgreSQL's own array input rules. It is not safe for concurrent use.
type ArrayChecker struct {
	types *pgtype.Map
}

// NewArrayChecker returns a checker with its own type map.
func NewArrayChecker() *ArrayChecker {
	return &ArrayChecker{types: pgtype.NewMap()}
}

// CheckArray reports whether a raw COPY field is a literal PostgreSQL would
// accept for a text[] column. The null marker is always valid.
func (c *ArrayChecker) CheckArray(field string) error {
	if field == domain.NullMarker {
		return nil
	}
	var dst []pgtype.Text
	src := []byte(UnescapeText(field))
	if err := c.types.Scan(pgtype.TextArrayOID, pgtype.TextFormatCode, src, &dst); err != nil {
		return fmt.Errorf("copyfmt: invalid text[] literal %q: %w", field, err)
	}
	return nil
}
