package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"clipfinder/internal/apperr"
	"clipfinder/models"
)

// TranscriptStore persists one JSON sidecar file per video filename.
// Transcripts are written once at ingestion and never mutated.
type TranscriptStore struct {
	dir string
}

func NewTranscriptStore(dir string) *TranscriptStore {
	return &TranscriptStore{dir: dir}
}

func (s *TranscriptStore) path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename)+".json")
}

// Put writes the transcript for filename. The transcript invariants are
// enforced here so nothing unsorted or overlapping ever reaches disk.
func (s *TranscriptStore) Put(filename string, t models.Transcript) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid transcript for %s: %w", filename, err)
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal transcript for %s: %w", filename, err)
	}
	if err := os.WriteFile(s.path(filename), data, 0644); err != nil {
		return fmt.Errorf("write transcript for %s: %w", filename, err)
	}
	return nil
}

// Get returns the transcript for filename, or NotFound.
func (s *TranscriptStore) Get(filename string) (models.Transcript, error) {
	data, err := os.ReadFile(s.path(filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.New(apperr.NotFound, "transcript for %q not found", filename)
		}
		return nil, fmt.Errorf("read transcript for %s: %w", filename, err)
	}
	var t models.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode transcript for %s: %w", filename, err)
	}
	return t, nil
}

// Raw returns the stored bytes without decoding. Used by the cascade
// delete to capture a restorable copy.
func (s *TranscriptStore) Raw(filename string) ([]byte, error) {
	data, err := os.ReadFile(s.path(filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.New(apperr.NotFound, "transcript for %q not found", filename)
		}
		return nil, err
	}
	return data, nil
}

// Restore writes previously captured raw bytes back. Only used to undo a
// partially failed cascade delete.
func (s *TranscriptStore) Restore(filename string, raw []byte) error {
	return os.WriteFile(s.path(filename), raw, 0644)
}

// Delete removes the transcript for filename. NotFound if absent.
func (s *TranscriptStore) Delete(filename string) error {
	if err := os.Remove(s.path(filename)); err != nil {
		if os.IsNotExist(err) {
			return apperr.New(apperr.NotFound, "transcript for %q not found", filename)
		}
		return fmt.Errorf("delete transcript for %s: %w", filename, err)
	}
	return nil
}
