// Package apperr defines the typed failure taxonomy shared by the
// ingestion, library and clip-extraction layers. Handlers translate kinds
// to HTTP statuses; everything else just wraps and re-returns.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application failure.
type Kind string

const (
	InvalidSource       Kind = "invalid_source"
	DownloadFailed      Kind = "download_failed"
	UnsupportedFormat   Kind = "unsupported_format"
	TranscriptionFailed Kind = "transcription_failed"
	NotFound            Kind = "not_found"
	OutOfRange          Kind = "out_of_range"
	SourceRemoved       Kind = "source_removed"
	SummarizationFailed Kind = "summarization_failed"
	Internal            Kind = "internal"
)

// Error is a typed application error with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, apperr.New(kind, "")) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New creates a typed error.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind of err, or Internal for untyped errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
