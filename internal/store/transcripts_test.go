package store

import (
	"errors"
	"reflect"
	"testing"

	"clipfinder/internal/apperr"
	"clipfinder/models"
)

func TestTranscriptStoreRoundTrip(t *testing.T) {
	s := NewTranscriptStore(t.TempDir())

	original := models.Transcript{
		{Text: "hello", Start: 0, End: 1.25},
		{Text: "world", Start: 1.25, End: 2.5},
	}
	if err := s.Put("v.mp4", original); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get("v.mp4")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, original)
	}
}

func TestTranscriptStoreRejectsInvalid(t *testing.T) {
	s := NewTranscriptStore(t.TempDir())

	bad := models.Transcript{
		{Text: "b", Start: 3, End: 4},
		{Text: "a", Start: 0, End: 1},
	}
	if err := s.Put("v.mp4", bad); err == nil {
		t.Fatal("Put should reject an unsorted transcript")
	}

	if _, err := s.Get("v.mp4"); !errors.Is(err, apperr.New(apperr.NotFound, "")) {
		t.Errorf("nothing should have been written, got %v", err)
	}
}

func TestTranscriptStoreNotFound(t *testing.T) {
	s := NewTranscriptStore(t.TempDir())

	if _, err := s.Get("ghost.mp4"); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("Get missing = %v, want NotFound", err)
	}
	if err := s.Delete("ghost.mp4"); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("Delete missing = %v, want NotFound", err)
	}
}

func TestTranscriptStoreRawRestore(t *testing.T) {
	s := NewTranscriptStore(t.TempDir())

	original := models.Transcript{{Text: "x", Start: 0, End: 1}}
	if err := s.Put("v.mp4", original); err != nil {
		t.Fatal(err)
	}

	raw, err := s.Raw("v.mp4")
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if err := s.Delete("v.mp4"); err != nil {
		t.Fatal(err)
	}
	if err := s.Restore("v.mp4", raw); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got, err := s.Get("v.mp4")
	if err != nil {
		t.Fatalf("Get after restore: %v", err)
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("restore mismatch: got %+v", got)
	}
}
