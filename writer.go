package epdpage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoPages is returned by WriteIndex when no pages have been written.
var ErrNoPages = errors.New("epdpage: no pages written")

// PageWriter stores packed page records as sequentially numbered files in
// a directory: 000000, 000001, ... It implements PageSink.
//
// The companion HEAD file names the first and last page index so a reader
// can page through the directory without listing it.
type PageWriter struct {
	dir  string
	next int
}

// NewPageWriter creates the output directory (and parents) if needed and
// returns a writer starting at page 000000.
func NewPageWriter(dir string) (*PageWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("epdpage: creating output directory: %w", err)
	}
	return &PageWriter{dir: dir}, nil
}

// WritePage stores one packed record under the next page number.
func (w *PageWriter) WritePage(packed []byte) error {
	name := filepath.Join(w.dir, fmt.Sprintf("%06d", w.next))
	if err := os.WriteFile(name, packed, 0o644); err != nil {
		return fmt.Errorf("epdpage: writing page %d: %w", w.next, err)
	}
	w.next++
	return nil
}

// Pages returns the number of pages written so far.
func (w *PageWriter) Pages() int {
	return w.next
}

// WriteIndex writes the HEAD sidecar naming the first and last page
// index, e.g. "000000 000041" for a 42-page batch.
func (w *PageWriter) WriteIndex() error {
	if w.next == 0 {
		return ErrNoPages
	}
	head := fmt.Sprintf("%06d %06d", 0, w.next-1)
	name := filepath.Join(w.dir, "HEAD")
	if err := os.WriteFile(name, []byte(head), 0o644); err != nil {
		return fmt.Errorf("epdpage: writing index: %w", err)
	}
	return nil
}
