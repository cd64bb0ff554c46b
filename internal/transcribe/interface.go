package transcribe

import (
	"context"

	"clipfinder/models"
)

// Engine converts a media file into an ordered, time-aligned transcript.
type Engine interface {
	Transcribe(ctx context.Context, mediaPath string) (models.Transcript, error)
}
