// Package fs provides file-based export of crawl records.
package fs

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/wikidoc"
)

// Ensure Writer implements wikidoc.RecordWriter at compile time.
var _ wikidoc.RecordWriter = (*Writer)(nil)

// Writer writes records as JSON Lines, one record per line.
// It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
}

// NewWriter creates a new Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc}
}

// Create creates or truncates the file at path, including parent
// directories, and returns a Writer for it. Close the Writer when done.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := NewWriter(f)
	w.closer = f
	return w, nil
}

// CreateRecord appends rec as one JSON line.
func (w *Writer) CreateRecord(ctx context.Context, rec *wikidoc.Record) error {
	if rec.Metadata.CurrentURL == "" {
		return wikidoc.Errorf(wikidoc.EINVALID, "record page URL required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(rec)
}

// Close closes the underlying file, if the Writer owns one.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
