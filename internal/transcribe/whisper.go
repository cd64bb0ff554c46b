// Package transcribe runs whisper.cpp against an extracted audio track and
// normalizes its JSON output into transcript segments.
package transcribe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"clipfinder/config"
	"clipfinder/internal/apperr"
	"clipfinder/internal/ffmpeg"
	"clipfinder/models"
	"clipfinder/pkg/executor"
)

// whisperOutput matches the -oj JSON file whisper.cpp writes. Offsets are
// milliseconds from the start of the audio.
type whisperOutput struct {
	Transcription []struct {
		Text    string `json:"text"`
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
	} `json:"transcription"`
}

// Whisper is the whisper.cpp-backed Engine.
type Whisper struct {
	cfg    config.WhisperConfig
	exec   executor.Executor
	ffmpeg *ffmpeg.FFmpeg
	logger *logrus.Logger
}

func NewWhisper(cfg config.WhisperConfig, exec executor.Executor, ff *ffmpeg.FFmpeg, logger *logrus.Logger) *Whisper {
	return &Whisper{cfg: cfg, exec: exec, ffmpeg: ff, logger: logger}
}

// Transcribe extracts a mono WAV track from mediaPath, runs whisper.cpp on
// it, and parses the resulting segments. All failures map to
// TranscriptionFailed; intermediate files are cleaned up on every path.
func (w *Whisper) Transcribe(ctx context.Context, mediaPath string) (models.Transcript, error) {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	audioPath := base + ".wav"
	jsonPath := base + ".json"

	if err := w.ffmpeg.ExtractAudio(ctx, mediaPath, audioPath); err != nil {
		return nil, apperr.Wrap(apperr.TranscriptionFailed, err, "audio extraction failed for %s", mediaPath)
	}
	defer os.Remove(audioPath)
	defer os.Remove(jsonPath)

	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", audioPath,
		"-l", w.cfg.Language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"-oj",
		"--output-file", base,
	}
	if _, err := w.exec.Execute(ctx, w.cfg.BinaryPath, args...); err != nil {
		return nil, apperr.Wrap(apperr.TranscriptionFailed, err, "whisper failed for %s", mediaPath)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.TranscriptionFailed, err, "whisper output missing for %s", mediaPath)
	}

	transcript, err := ParseWhisperJSON(data)
	if err != nil {
		return nil, apperr.Wrap(apperr.TranscriptionFailed, err, "unparsable whisper output for %s", mediaPath)
	}
	if len(transcript) == 0 {
		return nil, apperr.New(apperr.TranscriptionFailed, "whisper produced no segments for %s", mediaPath)
	}

	w.logger.WithFields(logrus.Fields{
		"media":    mediaPath,
		"segments": len(transcript),
	}).Info("Transcription completed")
	return transcript, nil
}

// ParseWhisperJSON converts raw whisper.cpp -oj output into a Transcript.
// Segments are sorted by start and clamped so adjacent segments never
// overlap; whisper occasionally emits a segment whose start precedes the
// previous end by a few milliseconds.
func ParseWhisperJSON(data []byte) (models.Transcript, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	var t models.Transcript
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		t = append(t, models.TranscriptSegment{
			Text:  text,
			Start: float64(seg.Offsets.From) / 1000.0,
			End:   float64(seg.Offsets.To) / 1000.0,
		})
	}

	sort.SliceStable(t, func(i, j int) bool { return t[i].Start < t[j].Start })

	cleaned := t[:0]
	var prevEnd float64
	for _, seg := range t {
		if seg.Start < prevEnd {
			seg.Start = prevEnd
		}
		if seg.Start >= seg.End {
			continue
		}
		cleaned = append(cleaned, seg)
		prevEnd = seg.End
	}
	return cleaned, nil
}
