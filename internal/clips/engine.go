// Package clips extracts a padded sub-clip around an anchor timestamp and
// attaches a best-effort summary of the transcript text it encloses.
package clips

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clipfinder/internal/apperr"
	"clipfinder/internal/store"
	"clipfinder/internal/summarize"
	"clipfinder/internal/worker"
	"clipfinder/models"
)

// Pad is the fixed half-width of the extraction window in seconds: a clip
// spans at most 2*Pad seconds centered on the anchor, clamped to the video.
const Pad = 7.0

// PlaceholderSummary is returned when summarization fails; the clip itself
// is still delivered.
const PlaceholderSummary = "Summary unavailable."

// Cutter cuts [start, start+duration) out of a video file. Satisfied by
// the ffmpeg wrapper.
type Cutter interface {
	CutClip(ctx context.Context, inputFile, outputFile string, start, duration float64) error
}

// Result is the outcome of a successful extraction.
type Result struct {
	ClipURL     string  `json:"clip_url"`
	Summary     string  `json:"summary"`
	WindowStart float64 `json:"start_time"`
	WindowEnd   float64 `json:"end_time"`
}

// Engine performs keyword-anchored clip extraction.
type Engine struct {
	media       *store.MediaStore
	transcripts *store.TranscriptStore
	library     *store.Library
	locks       *store.KeyedLocks
	cutter      Cutter
	summarizer  summarize.Engine
	pool        *worker.Dispatcher
	logger      *logrus.Logger
}

func NewEngine(
	media *store.MediaStore,
	transcripts *store.TranscriptStore,
	lib *store.Library,
	locks *store.KeyedLocks,
	cutter Cutter,
	summarizer summarize.Engine,
	pool *worker.Dispatcher,
	logger *logrus.Logger,
) *Engine {
	return &Engine{
		media:       media,
		transcripts: transcripts,
		library:     lib,
		locks:       locks,
		cutter:      cutter,
		summarizer:  summarizer,
		pool:        pool,
		logger:      logger,
	}
}

// Window computes the clamped extraction window around anchor for a video
// of the given duration: start = max(0, anchor-Pad), end = min(duration,
// anchor+Pad).
func Window(anchor, duration float64) (start, end float64) {
	start = anchor - Pad
	if start < 0 {
		start = 0
	}
	end = anchor + Pad
	if end > duration {
		end = duration
	}
	return start, end
}

// Extract cuts a clip of at most 2*Pad seconds around anchor from the
// given library video. The keyword is only a summarization hint; it is
// never used to relocate the anchor and may be absent from the transcript.
// The source is re-checked against storage before the cut so a concurrent
// delete fails the extraction with SourceRemoved instead of operating on a
// stale path.
func (e *Engine) Extract(ctx context.Context, filename, keyword string, anchor float64) (*Result, error) {
	rec, err := e.library.Get(filename)
	if err != nil {
		return nil, err
	}
	transcript, err := e.transcripts.Get(filename)
	if err != nil {
		return nil, err
	}

	if anchor < 0 || anchor > rec.DurationSeconds {
		return nil, apperr.New(apperr.OutOfRange,
			"timestamp %.3f outside video duration %.3f", anchor, rec.DurationSeconds)
	}

	start, end := Window(anchor, rec.DurationSeconds)
	clipFilename := "clip_" + uuid.NewString() + ".mp4"
	clipPath := e.media.ClipPath(clipFilename)

	release := e.locks.Acquire("clip:" + filename)
	defer release()

	// Storage is consulted directly, not cached state: the source may have
	// been deleted while we were waiting on the lock.
	if !e.media.Exists(filename) {
		return nil, apperr.New(apperr.SourceRemoved, "source video %q was removed", filename)
	}

	job := worker.FuncJob{
		JobID: "extract-" + clipFilename,
		Fn: func(jobCtx context.Context) error {
			return e.cutter.CutClip(jobCtx, e.media.SourcePath(filename), clipPath, start, end-start)
		},
	}
	if err := e.pool.Submit(ctx, job); err != nil {
		if !e.media.Exists(filename) {
			return nil, apperr.Wrap(apperr.SourceRemoved, err, "source video %q removed during extraction", filename)
		}
		return nil, err
	}

	text := transcript.TextInWindow(start, end)
	summary, err := e.summarizer.Summarize(ctx, keyword, text)
	if err != nil {
		// Best-effort: the clip is the product, the summary is garnish.
		e.logger.WithFields(logrus.Fields{
			"filename": filename,
			"keyword":  keyword,
		}).Warnf("Summarization failed: %v", err)
		summary = PlaceholderSummary
	}

	clip := models.ClipRecord{
		ClipFilename:   clipFilename,
		SourceFilename: filename,
		WindowStart:    start,
		WindowEnd:      end,
		ClipPath:       clipPath,
		Summary:        summary,
		CreatedAt:      time.Now(),
	}
	if err := e.library.AddClip(clip); err != nil {
		// The clip file exists and is usable; losing the registry row only
		// affects cascade cleanup.
		e.logger.Warnf("Failed to register clip %s: %v", clipFilename, err)
	}

	e.logger.WithFields(logrus.Fields{
		"filename": filename,
		"clip":     clipFilename,
		"start":    start,
		"end":      end,
	}).Info("Clip extracted")

	return &Result{
		ClipURL:     "/static/processed/" + clipFilename,
		Summary:     summary,
		WindowStart: start,
		WindowEnd:   end,
	}, nil
}
