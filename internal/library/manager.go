// Package library is the read/delete surface over ingested videos: the
// history listing, transcript retrieval and the cascade delete.
package library

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"clipfinder/internal/apperr"
	"clipfinder/internal/store"
	"clipfinder/models"
)

const summaryChars = 100

// Manager provides history CRUD over the stores.
type Manager struct {
	media       *store.MediaStore
	transcripts *store.TranscriptStore
	library     *store.Library
	logger      *logrus.Logger
}

func NewManager(media *store.MediaStore, transcripts *store.TranscriptStore, lib *store.Library, logger *logrus.Logger) *Manager {
	return &Manager{media: media, transcripts: transcripts, library: lib, logger: logger}
}

// List returns history items, most recent first (created_at DESC,
// filename ASC on ties — ordering is delegated to the library index).
func (m *Manager) List() ([]models.HistoryItem, error) {
	recs, err := m.library.List()
	if err != nil {
		return nil, err
	}

	items := make([]models.HistoryItem, 0, len(recs))
	for _, rec := range recs {
		summary := "No transcript"
		if t, err := m.transcripts.Get(rec.Filename); err == nil {
			summary = t.Summary(summaryChars)
		}
		items = append(items, models.HistoryItem{
			Type:              rec.SourceType,
			Source:            rec.SourceRef,
			Filename:          rec.Filename,
			DisplayName:       rec.DisplayName,
			VideoURL:          "/static/uploads/" + rec.Filename,
			DurationSeconds:   rec.DurationSeconds,
			TranscriptSummary: summary,
			CreatedAt:         rec.CreatedAt,
		})
	}
	return items, nil
}

// GetTranscript returns the transcript for a registered video. Unknown
// filenames yield NotFound; the HTTP layer maps that to an empty list per
// the client contract.
func (m *Manager) GetTranscript(filename string) (models.Transcript, error) {
	if _, err := m.library.Get(filename); err != nil {
		return nil, err
	}
	return m.transcripts.Get(filename)
}

// Delete removes a video's record, transcript, media bytes and derived
// clips. Transcript and media removal is atomic from the caller's point of
// view: the transcript is captured before removal and restored if the
// media delete fails, so a partial cascade is never observable.
func (m *Manager) Delete(filename string) error {
	if _, err := m.library.Get(filename); err != nil {
		return err
	}

	raw, err := m.transcripts.Raw(filename)
	if err != nil && !apperr.IsKind(err, apperr.NotFound) {
		return fmt.Errorf("read transcript before delete: %w", err)
	}

	if raw != nil {
		if err := m.transcripts.Delete(filename); err != nil {
			return fmt.Errorf("delete transcript: %w", err)
		}
	}

	if err := m.media.Delete(filename); err != nil && !apperr.IsKind(err, apperr.NotFound) {
		if raw != nil {
			if rerr := m.transcripts.Restore(filename, raw); rerr != nil {
				m.logger.Errorf("Failed to restore transcript for %s after media delete error: %v", filename, rerr)
			}
		}
		return fmt.Errorf("delete media: %w", err)
	}

	clips, err := m.library.ClipsFor(filename)
	if err != nil {
		m.logger.Warnf("Could not list clips for %s during delete: %v", filename, err)
	}
	for _, clip := range clips {
		if err := m.media.DeleteClip(clip.ClipFilename); err != nil {
			m.logger.Warnf("Failed to remove clip file %s: %v", clip.ClipFilename, err)
		}
	}
	if err := m.library.DeleteClipsFor(filename); err != nil {
		m.logger.Warnf("Failed to remove clip records for %s: %v", filename, err)
	}

	if err := m.library.Delete(filename); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Kind == apperr.NotFound {
			// Row vanished between the existence check and now; the
			// cascade already ran, treat as deleted.
			return nil
		}
		return err
	}

	m.logger.WithField("filename", filename).Info("Video deleted with cascade")
	return nil
}
