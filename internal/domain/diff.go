package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Diff is one field-level discrepancy between dump and log.
// Summary diffs fill DumpText/LogText; list diffs fill DumpList/LogList.
type Diff struct {
	Key      TranslationKey
	Field    string
	DumpText *string
	LogText  string
	DumpList []string
	LogList  []string
}

func (d Diff) String() string {
	if d.Field == FieldSummary {
		dump := "NULL"
		if d.DumpText != nil {
			dump = strconv.Quote(*d.DumpText)
		}
		return fmt.Sprintf("%s %s: dump=%s log=%s", d.Key, d.Field, dump, strconv.Quote(d.LogText))
	}
	return fmt.Sprintf("%s %s: dump=%s log=%s", d.Key, d.Field, quoteList(d.DumpList), quoteList(d.LogList))
}

func quoteList(items []string) string {
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
