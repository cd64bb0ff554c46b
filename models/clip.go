package models

import "time"

// ClipRecord represents a sub-clip cut from a library video. Clips are
// ephemeral relative to their source: they are registered only so that
// deleting the source video can cascade to its derived clips.
type ClipRecord struct {
	ClipFilename   string    `json:"clip_filename"`
	SourceFilename string    `json:"source_filename"`
	WindowStart    float64   `json:"window_start"`
	WindowEnd      float64   `json:"window_end"`
	ClipPath       string    `json:"clip_path"`
	Summary        string    `json:"summary"`
	CreatedAt      time.Time `json:"created_at"`
}
