// Package ingest turns a URL or an uploaded file into a registered library
// entry: normalized media bytes, a persisted transcript and a VideoRecord.
// A record only becomes visible once its transcript is fully written.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clipfinder/internal/apperr"
	"clipfinder/internal/store"
	"clipfinder/internal/transcribe"
	"clipfinder/models"
)

// Prober reports the duration of a media file in seconds. Satisfied by the
// ffmpeg wrapper.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

var allowedUploadExts = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".mkv": true,
	".webm": true,
}

// Result is what a completed ingestion hands back to the caller.
type Result struct {
	StatusID   string
	Record     models.VideoRecord
	Transcript models.Transcript
	VideoURL   string
}

// Manager orchestrates both ingestion paths.
type Manager struct {
	media       *store.MediaStore
	transcripts *store.TranscriptStore
	library     *store.Library
	locks       *store.KeyedLocks
	prober      Prober
	transcriber transcribe.Engine
	downloader  Downloader
	Statuses    *StatusRegistry
	logger      *logrus.Logger
}

func NewManager(
	media *store.MediaStore,
	transcripts *store.TranscriptStore,
	library *store.Library,
	locks *store.KeyedLocks,
	prober Prober,
	transcriber transcribe.Engine,
	downloader Downloader,
	logger *logrus.Logger,
) *Manager {
	return &Manager{
		media:       media,
		transcripts: transcripts,
		library:     library,
		locks:       locks,
		prober:      prober,
		transcriber: transcriber,
		downloader:  downloader,
		Statuses:    NewStatusRegistry(),
		logger:      logger,
	}
}

// IngestFromURL validates and downloads a remote video, then finalizes it.
// Re-ingesting the same URL deliberately creates a new record: dedup is an
// explicit non-feature (see DESIGN.md).
func (m *Manager) IngestFromURL(ctx context.Context, rawURL string) (*Result, error) {
	statusID := m.Statuses.Begin()

	if err := ValidateSourceURL(rawURL); err != nil {
		m.Statuses.Fail(statusID, err)
		return nil, err
	}

	filename := uuid.NewString() + ".mp4"
	release := m.locks.Acquire(filename)
	defer release()

	m.Statuses.SetState(statusID, StateDownloading)
	destPath := m.media.SourcePath(filename)
	title, err := m.downloader.Download(ctx, rawURL, destPath)
	if err != nil {
		m.Statuses.Fail(statusID, err)
		return nil, err
	}
	m.Statuses.SetPercent(statusID, 50)

	res, err := m.finalize(ctx, statusID, filename, title, models.SourceTypeYouTube, rawURL)
	if err != nil {
		m.Statuses.Fail(statusID, err)
		return nil, err
	}
	return res, nil
}

// IngestFromUpload streams an uploaded payload into the media store under a
// generated filename, reporting monotone progress, then finalizes it.
func (m *Manager) IngestFromUpload(ctx context.Context, r io.Reader, originalName string, size int64) (*Result, error) {
	statusID := m.Statuses.Begin()

	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedUploadExts[ext] {
		err := apperr.New(apperr.UnsupportedFormat, "unsupported upload extension %q", ext)
		m.Statuses.Fail(statusID, err)
		return nil, err
	}

	filename := uuid.NewString() + ext
	release := m.locks.Acquire(filename)
	defer release()

	m.Statuses.SetState(statusID, StateUploading)
	reader := r
	if size > 0 {
		reader = &progressReader{
			r:    r,
			size: size,
			report: func(pct float64) {
				// Upload accounts for the first half of overall progress.
				m.Statuses.SetPercent(statusID, pct/2)
			},
		}
	}

	if _, err := m.media.Put(filename, reader); err != nil {
		wrapped := fmt.Errorf("store upload %s: %w", originalName, err)
		m.Statuses.Fail(statusID, wrapped)
		return nil, wrapped
	}
	m.Statuses.SetPercent(statusID, 50)

	res, err := m.finalize(ctx, statusID, filename, originalName, models.SourceTypeUpload, originalName)
	if err != nil {
		m.Statuses.Fail(statusID, err)
		return nil, err
	}
	return res, nil
}

// finalize is the shared tail of both ingestion paths: probe duration,
// transcribe, persist transcript, then register the record. The transcript
// write strictly precedes the record insert, so history never lists a
// video without a transcript. Any failure removes the media bytes.
func (m *Manager) finalize(ctx context.Context, statusID, filename, displayName, sourceType, sourceRef string) (*Result, error) {
	path := m.media.SourcePath(filename)

	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			m.logger.Warnf("Failed to remove media after ingestion error: %v", err)
		}
	}

	duration, err := m.prober.ProbeDuration(ctx, path)
	if err != nil {
		cleanup()
		return nil, err
	}

	m.Statuses.SetState(statusID, StateTranscribing)
	transcript, err := m.transcriber.Transcribe(ctx, path)
	if err != nil {
		cleanup()
		return nil, err
	}
	m.Statuses.SetPercent(statusID, 90)

	// Clamp segments to the probed duration; engines can overshoot the
	// container duration by a frame.
	for i := range transcript {
		if transcript[i].End > duration {
			transcript[i].End = duration
		}
	}

	if err := m.transcripts.Put(filename, transcript); err != nil {
		cleanup()
		return nil, fmt.Errorf("persist transcript: %w", err)
	}

	rec := models.VideoRecord{
		Filename:        filename,
		DisplayName:     displayName,
		SourceType:      sourceType,
		SourceRef:       sourceRef,
		DurationSeconds: duration,
		CreatedAt:       time.Now(),
	}
	if err := m.library.Insert(rec); err != nil {
		if derr := m.transcripts.Delete(filename); derr != nil {
			m.logger.Warnf("Failed to remove transcript after insert error: %v", derr)
		}
		cleanup()
		return nil, fmt.Errorf("register video: %w", err)
	}

	m.Statuses.Finish(statusID, filename)
	m.logger.WithFields(logrus.Fields{
		"filename": filename,
		"source":   sourceType,
		"duration": duration,
		"segments": len(transcript),
	}).Info("Ingestion completed")

	return &Result{
		StatusID:   statusID,
		Record:     rec,
		Transcript: transcript,
		VideoURL:   "/static/uploads/" + filename,
	}, nil
}

// progressReader reports read progress as a percentage of the expected
// size. Percentages never decrease; the registry also enforces that.
type progressReader struct {
	r      io.Reader
	size   int64
	read   int64
	report func(pct float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.size > 0 {
		pct := float64(p.read) / float64(p.size) * 100
		if pct > 100 {
			pct = 100
		}
		p.report(pct)
	}
	return n, err
}
