package models

import "time"

// SourceTypeYouTube and SourceTypeUpload are the two ways a video can
// enter the library.
const (
	SourceTypeYouTube = "youtube"
	SourceTypeUpload  = "upload"
)

// VideoRecord represents a video registered in the library. Filename is the
// primary key: a generated "{uuid}{ext}" name, unique by construction, so
// no collision-avoidance suffixing is ever needed. DisplayName carries the
// human-readable title (video title or original upload name).
type VideoRecord struct {
	Filename        string    `json:"filename"`
	DisplayName     string    `json:"display_name"`
	SourceType      string    `json:"source_type"`
	SourceRef       string    `json:"source_ref"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

// HistoryItem is the read projection of a VideoRecord returned by the
// history listing. TranscriptSummary is the first 100 characters of the
// transcript, not independently persisted.
type HistoryItem struct {
	Type              string    `json:"type"`
	Source            string    `json:"source"`
	Filename          string    `json:"filename"`
	DisplayName       string    `json:"display_name"`
	VideoURL          string    `json:"video_url"`
	DurationSeconds   float64   `json:"duration_seconds"`
	TranscriptSummary string    `json:"transcript_summary"`
	CreatedAt         time.Time `json:"created_at"`
}
