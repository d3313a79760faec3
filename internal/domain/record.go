package domain

// Table is the single dump table the tools read and write.
const Table = "public.vehicle_generation_i18n"

// NullMarker is the COPY text-format representation of SQL NULL.
const NullMarker = `\N`

// Field names shared by the CSV log, the dump header and the SQL output.
const (
	FieldSummary        = "summary"
	FieldPros           = "pros"
	FieldCons           = "cons"
	FieldInspectionTips = "inspection_tips"
)

// ListFields are the text[] columns, in output order.
var ListFields = []string{FieldPros, FieldCons, FieldInspectionTips}

// TranslationKey identifies one localized generation record.
type TranslationKey struct {
	GenerationID string
	Locale       string
}

func (k TranslationKey) String() string {
	return "(" + k.GenerationID + ", " + k.Locale + ")"
}

// DumpRecord is one data line of the COPY block.
type DumpRecord struct {
	Key TranslationKey
	// Summary is nil when the dump holds \N.
	Summary *string
	// Array columns keep the raw COPY literal (possibly \N); decode with copyfmt.
	Pros           string
	Cons           string
	InspectionTips string
	// Extra holds every other declared column by name.
	Extra map[string]string
}

// List returns the raw literal of the named array column.
func (r DumpRecord) List(field string) string {
	switch field {
	case FieldPros:
		return r.Pros
	case FieldCons:
		return r.Cons
	case FieldInspectionTips:
		return r.InspectionTips
	}
	return NullMarker
}

// LogEntry is the aggregated content of every CSV row sharing a key.
// An empty Summary means the log carried none.
type LogEntry struct {
	Summary        string
	Pros           []string
	Cons           []string
	InspectionTips []string
}

// List returns the named list field.
func (e *LogEntry) List(field string) []string {
	switch field {
	case FieldPros:
		return e.Pros
	case FieldCons:
		return e.Cons
	case FieldInspectionTips:
		return e.InspectionTips
	}
	return nil
}

// AddUnique appends v to the named list unless already present.
// Unknown field names are ignored.
func (e *LogEntry) AddUnique(field, v string) {
	var dst *[]string
	switch field {
	case FieldPros:
		dst = &e.Pros
	case FieldCons:
		dst = &e.Cons
	case FieldInspectionTips:
		dst = &e.InspectionTips
	default:
		return
	}
	for _, s := range *dst {
		if s == v {
			return
		}
	}
	*dst = append(*dst, v)
}
