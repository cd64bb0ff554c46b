// Package ffmpeg wraps the ffmpeg/ffprobe binaries behind the capabilities
// the pipeline needs: probing duration, cutting a sub-range, and pulling a
// mono WAV track for transcription.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"clipfinder/internal/apperr"
	"clipfinder/pkg/executor"
)

// FFProbeOutput captures the format.duration field of ffprobe JSON output.
type FFProbeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type FFmpeg struct {
	exec executor.Executor
}

func New(exec executor.Executor) *FFmpeg {
	return &FFmpeg{exec: exec}
}

// ProbeDuration returns the duration of a media file in seconds. A file
// whose container cannot be probed yields UnsupportedFormat.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	out, err := f.exec.Execute(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, apperr.Wrap(apperr.UnsupportedFormat, err, "ffprobe failed for %s", path)
	}

	var probe FFProbeOutput
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, apperr.Wrap(apperr.UnsupportedFormat, err, "unreadable ffprobe output for %s", path)
	}
	if probe.Format.Duration == "" {
		return 0, apperr.New(apperr.UnsupportedFormat, "no duration in ffprobe output for %s", path)
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.UnsupportedFormat, err, "bad duration %q for %s", probe.Format.Duration, path)
	}
	if duration <= 0 {
		return 0, apperr.New(apperr.UnsupportedFormat, "non-positive duration %.3f for %s", duration, path)
	}
	return duration, nil
}

// CutClip writes the sub-range [start, start+duration) of inputFile to
// outputFile. Re-encodes (libx264/aac) rather than stream-copying so cuts
// land on exact timestamps instead of the nearest keyframe.
func (f *FFmpeg) CutClip(ctx context.Context, inputFile, outputFile string, start, duration float64) error {
	_, err := f.exec.Execute(ctx, "ffmpeg",
		"-ss", formatSeconds(start),
		"-i", inputFile,
		"-t", formatSeconds(duration),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-y",
		outputFile,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg cut failed: %w", err)
	}
	return nil
}

// ExtractAudio writes the audio track of inputFile as 16 kHz mono
// pcm_s16le WAV, the input format the transcription engine expects.
func (f *FFmpeg) ExtractAudio(ctx context.Context, inputFile, outputFile string) error {
	_, err := f.exec.Execute(ctx, "ffmpeg",
		"-i", inputFile,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outputFile,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %w", err)
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
