package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"typed error", New(NotFound, "video missing"), NotFound},
		{"wrapped typed error", fmt.Errorf("outer: %w", New(OutOfRange, "bad anchor")), OutOfRange},
		{"double wrap keeps kind", Wrap(DownloadFailed, errors.New("net"), "fetch"), DownloadFailed},
		{"untyped error", errors.New("plain"), Internal},
		{"nil inner", New(SourceRemoved, "gone"), SourceRemoved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := Wrap(TranscriptionFailed, errors.New("whisper exited 1"), "transcribe clip.mp4")

	if !IsKind(err, TranscriptionFailed) {
		t.Error("IsKind should match the wrapped kind")
	}
	if IsKind(err, NotFound) {
		t.Error("IsKind should not match a different kind")
	}
}

func TestErrorsIsMatchesOnKind(t *testing.T) {
	err := New(NotFound, "video %q not found", "a.mp4")
	if !errors.Is(err, New(NotFound, "")) {
		t.Error("errors.Is should match on kind alone")
	}
	if errors.Is(err, New(OutOfRange, "")) {
		t.Error("errors.Is should not match different kinds")
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := Wrap(Internal, inner, "persist transcript")
	if !errors.Is(err, inner) {
		t.Error("wrapped error should unwrap to inner")
	}
}
