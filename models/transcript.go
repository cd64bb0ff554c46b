package models

import (
	"fmt"
	"strings"
)

// TranscriptSegment represents a single time-aligned unit of a transcription.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is an ordered sequence of segments. It is written once at
// ingestion time and immutable afterwards.
type Transcript []TranscriptSegment

// Validate checks the transcript invariants: non-empty text, start < end,
// segments sorted by start and non-overlapping.
func (t Transcript) Validate() error {
	for i, seg := range t {
		if strings.TrimSpace(seg.Text) == "" {
			return fmt.Errorf("segment %d: empty text", i)
		}
		if seg.Start < 0 {
			return fmt.Errorf("segment %d: negative start %.3f", i, seg.Start)
		}
		if seg.Start >= seg.End {
			return fmt.Errorf("segment %d: start %.3f not before end %.3f", i, seg.Start, seg.End)
		}
		if i > 0 && t[i-1].End > seg.Start {
			return fmt.Errorf("segment %d: overlaps previous (prev end %.3f > start %.3f)", i, t[i-1].End, seg.Start)
		}
	}
	return nil
}

// TextInWindow concatenates, in order, the text of every segment that
// overlaps the half-open window [start, end). A segment overlaps when
// seg.Start < end && seg.End > start.
func (t Transcript) TextInWindow(start, end float64) string {
	var parts []string
	for _, seg := range t {
		if seg.Start < end && seg.End > start {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Summary returns the first n characters of the transcript text, with an
// ellipsis when truncated. Used for history listings.
func (t Transcript) Summary(n int) string {
	if len(t) == 0 {
		return "No transcript"
	}
	text := t[0].Text
	for _, seg := range t[1:] {
		if len(text) > n {
			break
		}
		text += " " + seg.Text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
