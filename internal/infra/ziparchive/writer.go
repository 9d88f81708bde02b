// Package ziparchive implements the archive-writer port over archive/zip.
package ziparchive

import (
	"archive/zip"
	"fmt"
	"io"
	"time"
)

// Writer streams the export archive to an io.Writer. Finalize must be
// called exactly once; entries are unreadable without it.
type Writer struct {
	zw        *zip.Writer
	finalized bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w)}
}

// CreateFolder writes an explicit directory entry so the folder appears in
// the archive even before any file lands in it.
func (w *Writer) CreateFolder(path string) error {
	if len(path) == 0 {
		return fmt.Errorf("empty folder path")
	}
	if path[len(path)-1] != '/' {
		path += "/"
	}
	_, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     path,
		Modified: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("create folder %s: %w", path, err)
	}
	return nil
}

func (w *Writer) AddFile(path string, data []byte) error {
	f, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     path,
		Method:   zip.Deflate,
		Modified: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", path, err)
	}
	return nil
}

func (w *Writer) Finalize() error {
	if w.finalized {
		return nil
	}
	w.finalized = true
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}
