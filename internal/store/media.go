// Package store contains the filesystem and SQLite persistence for the
// video library: media bytes, transcript sidecars and the record index.
// All keys are generated "{uuid}{ext}" filenames.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"clipfinder/internal/apperr"
)

// MediaStore is filename-addressed storage for source videos (uploads root)
// and derived clips (processed root). Both roots are served as static
// resources, so paths never leave their root: keys are reduced to their
// base name before use.
type MediaStore struct {
	uploadsDir   string
	processedDir string
}

func NewMediaStore(uploadsDir, processedDir string) *MediaStore {
	return &MediaStore{uploadsDir: uploadsDir, processedDir: processedDir}
}

// Put streams r into the uploads root under filename. Returns the number
// of bytes written. An existing key is never overwritten.
func (m *MediaStore) Put(filename string, r io.Reader) (int64, error) {
	path := m.SourcePath(filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return 0, fmt.Errorf("media key %q already exists", filename)
		}
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return n, nil
}

// SourcePath returns the on-disk path for a source video key.
func (m *MediaStore) SourcePath(filename string) string {
	return filepath.Join(m.uploadsDir, filepath.Base(filename))
}

// ClipPath returns the on-disk path for a derived clip key.
func (m *MediaStore) ClipPath(filename string) string {
	return filepath.Join(m.processedDir, filepath.Base(filename))
}

// Exists reports whether a source video is present on disk.
func (m *MediaStore) Exists(filename string) bool {
	_, err := os.Stat(m.SourcePath(filename))
	return err == nil
}

// Delete removes a source video. NotFound if the key is absent.
func (m *MediaStore) Delete(filename string) error {
	path := m.SourcePath(filename)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return apperr.New(apperr.NotFound, "media %q not found", filename)
		}
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// DeleteClip removes a derived clip file. Missing clips are not an error:
// clips may be garbage-collected independently of their source.
func (m *MediaStore) DeleteClip(filename string) error {
	err := os.Remove(m.ClipPath(filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete clip %s: %w", filename, err)
	}
	return nil
}
