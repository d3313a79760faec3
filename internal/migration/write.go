package migration

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"
)

// WriteFile writes script to path, creating the parent directory first.
func WriteFile(path, script string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("migration: create dir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return fmt.Errorf("migration: write %s: %w", path, err)
	}
	return nil
}

// DigestReader wraps r so every byte read is hashed. Sum returns the xxh3
// digest of what has been consumed so far.
type DigestReader struct {
	r io.Reader
	h *xxh3.Hasher
}

// NewDigestReader returns a hashing reader over r.
func NewDigestReader(r io.Reader) *DigestReader {
	return &DigestReader{r: r, h: xxh3.New()}
}

func (d *DigestReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if n > 0 {
		_, _ = d.h.Write(p[:n])
	}
	return n, err
}

func (d *DigestReader) Sum() uint64 { return d.h.Sum64() }
