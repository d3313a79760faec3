package dump

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"i18nsync/internal/domain"
)

const header = "COPY public.vehicle_generation_i18n (generation_id, locale, summary, pros, cons, inspection_tips, updated_at) FROM stdin;"

func key(g, l string) domain.TranslationKey {
	return domain.TranslationKey{GenerationID: g, Locale: l}
}

// dumpText joins lines with LF and adds a trailing newline, like pg_dump.
func dumpText(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestScan_DecodesPayload(t *testing.T) {
	t.Parallel()

	in := dumpText(
		"--",
		"-- Data for Name: vehicle_generation_i18n; Type: TABLE DATA; Schema: public",
		"--",
		"",
		header,
		"gen1\ten\tGreat car\t{Reliable,Efficient}\t{}\t\\N\t2025-10-30",
		"",
		"gen1\tde\t\\N\t\\N\t{Teuer}\t{\"Rost prüfen\"}\t2025-10-30",
		`\.`,
		"",
		"COPY public.other (id) FROM stdin;",
		"1",
		`\.`,
	)

	tbl, err := Scan(context.Background(), strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Scan err: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	if got := tbl.Columns; len(got) != 7 || got[6] != "updated_at" {
		t.Fatalf("Columns = %v", got)
	}

	en, ok := tbl.Get(key("gen1", "en"))
	if !ok {
		t.Fatalf("missing (gen1, en)")
	}
	if en.Summary == nil || *en.Summary != "Great car" {
		t.Fatalf("summary = %v", en.Summary)
	}
	if en.Pros != "{Reliable,Efficient}" || en.Cons != "{}" || en.InspectionTips != `\N` {
		t.Fatalf("arrays = %q %q %q", en.Pros, en.Cons, en.InspectionTips)
	}
	if en.Extra["updated_at"] != "2025-10-30" {
		t.Fatalf("extra = %v", en.Extra)
	}

	de, _ := tbl.Get(key("gen1", "de"))
	if de.Summary != nil {
		t.Fatalf("null summary decoded as %q", *de.Summary)
	}

	keys := tbl.Keys()
	if keys[0] != key("gen1", "en") || keys[1] != key("gen1", "de") {
		t.Fatalf("key order = %v", keys)
	}
}

// TestScan_NoHeader yields an empty table, not an error.
func TestScan_NoHeader(t *testing.T) {
	t.Parallel()

	in := dumpText("COPY public.vehicles (id) FROM stdin;", "1", `\.`)
	tbl, err := Scan(context.Background(), strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Scan err: %v", err)
	}
	if tbl.Len() != 0 {
		t.Fatalf("Len = %d, want 0", tbl.Len())
	}
}

// TestScan_OnlyFirstBlock stops at the first terminator; a second block for
// the same table is never read.
func TestScan_OnlyFirstBlock(t *testing.T) {
	t.Parallel()

	in := dumpText(
		header,
		"gen1\ten\tfirst\t{}\t{}\t{}\tx",
		`\.`,
		header,
		"gen2\ten\tsecond\t{}\t{}\t{}\tx",
		"gen1\ten\toverwritten\t{}\t{}\t{}\tx",
		`\.`,
	)
	tbl, err := Scan(context.Background(), strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Scan err: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tbl.Len())
	}
	rec, _ := tbl.Get(key("gen1", "en"))
	if *rec.Summary != "first" {
		t.Fatalf("summary = %q, want first", *rec.Summary)
	}
}

// TestScan_DuplicateKeyLastWins keeps the first position but the last value.
func TestScan_DuplicateKeyLastWins(t *testing.T) {
	t.Parallel()

	in := dumpText(
		header,
		"gen1\ten\told\t{}\t{}\t{}\tx",
		"gen2\ten\tother\t{}\t{}\t{}\tx",
		"gen1\ten\tnew\t{}\t{}\t{}\tx",
		`\.`,
	)
	tbl, err := Scan(context.Background(), strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Scan err: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	rec, _ := tbl.Get(key("gen1", "en"))
	if *rec.Summary != "new" {
		t.Fatalf("summary = %q, want new", *rec.Summary)
	}
	if tbl.Keys()[0] != key("gen1", "en") {
		t.Fatalf("order = %v", tbl.Keys())
	}
}

func TestScan_MissingColumns(t *testing.T) {
	t.Parallel()

	t.Run("header", func(t *testing.T) {
		in := dumpText("COPY public.vehicle_generation_i18n (generation_id, locale) FROM stdin;", `\.`)
		if _, err := Scan(context.Background(), strings.NewReader(in), Options{}); !errors.Is(err, ErrMissingColumn) {
			t.Fatalf("err = %v, want ErrMissingColumn", err)
		}
	})
	t.Run("short line", func(t *testing.T) {
		in := dumpText(header, "gen1\ten\tsummary only", `\.`)
		_, err := Scan(context.Background(), strings.NewReader(in), Options{})
		if !errors.Is(err, ErrMissingColumn) {
			t.Fatalf("err = %v, want ErrMissingColumn", err)
		}
		if !strings.Contains(err.Error(), "line 2") {
			t.Fatalf("err = %v, want line number", err)
		}
	})
	t.Run("optional column absent", func(t *testing.T) {
		in := dumpText(header, "gen1\ten\ts\t{}\t{}\t{}", `\.`)
		tbl, err := Scan(context.Background(), strings.NewReader(in), Options{})
		if err != nil {
			t.Fatalf("Scan err: %v", err)
		}
		if tbl.Len() != 1 {
			t.Fatalf("Len = %d, want 1", tbl.Len())
		}
	})
}

func TestScan_StrictCountsWarnings(t *testing.T) {
	t.Parallel()

	in := dumpText(
		header,
		"gen1\ten\ts\t{ok}\t{\"broken\t{}\tx",
		"gen2\ten\ts\t{ok}\t{}\t\\N\tx",
		`\.`,
	)
	tbl, err := Scan(context.Background(), strings.NewReader(in), Options{Strict: true})
	if err != nil {
		t.Fatalf("Scan err: %v", err)
	}
	if tbl.Warnings != 1 {
		t.Fatalf("Warnings = %d, want 1", tbl.Warnings)
	}

	lax, err := Scan(context.Background(), strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Scan err: %v", err)
	}
	if lax.Warnings != 0 {
		t.Fatalf("non-strict Warnings = %d, want 0", lax.Warnings)
	}
}

func TestScanFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "remote.sql")
	in := dumpText(header, "gen1\ten\ts\t{}\t{}\t{}\tx", `\.`)
	if err := os.WriteFile(path, []byte(in), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := ScanFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("ScanFile err: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tbl.Len())
	}

	if _, err := ScanFile(context.Background(), filepath.Join(t.TempDir(), "missing.sql"), Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

// TestScan_LongLines reads past lines longer than the reader buffer, both
// in an unrelated block before the header and inside the payload.
func TestScan_LongLines(t *testing.T) {
	t.Parallel()

	blob := strings.Repeat("x", 3*readBufSize+17)
	longSummary := strings.Repeat("s", 2*readBufSize+5)
	in := dumpText(
		"COPY public.blobs (id, data) FROM stdin;",
		"1\t"+blob,
		`\.`,
		header,
		"gen1\ten\t"+longSummary+"\t{}\t{}\t{}\tx",
		"gen2\ten\tshort\t{}\t{}\t{}\tx",
		`\.`,
	)
	tbl, err := Scan(context.Background(), strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Scan err: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	rec, _ := tbl.Get(key("gen1", "en"))
	if rec.Summary == nil || *rec.Summary != longSummary {
		t.Fatalf("long summary not kept intact")
	}
}

// TestScan_CRLFAndMissingFinalNewline accepts Windows line endings and a
// payload that ends without a newline.
func TestScan_CRLFAndMissingFinalNewline(t *testing.T) {
	t.Parallel()

	in := header + "\r\ngen1\ten\ts\t{}\t{}\t{}\tx\r\n" + "gen2\ten\tlast\t{}\t{}\t{}\tx"
	tbl, err := Scan(context.Background(), strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Scan err: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	rec, _ := tbl.Get(key("gen1", "en"))
	if rec.Extra["updated_at"] != "x" {
		t.Fatalf("updated_at = %q, want x", rec.Extra["updated_at"])
	}
}

func TestScan_StopsWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := dumpText(header, "gen1\ten\ts\t{}\t{}\t{}\tx", `\.`)
	if _, err := Scan(ctx, strings.NewReader(in), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
