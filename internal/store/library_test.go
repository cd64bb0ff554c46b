package store

import (
	"path/filepath"
	"testing"
	"time"

	"clipfinder/internal/apperr"
	"clipfinder/models"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := OpenLibrary(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("OpenLibrary: %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	return lib
}

func record(filename string, createdAt time.Time) models.VideoRecord {
	return models.VideoRecord{
		Filename:        filename,
		DisplayName:     "video " + filename,
		SourceType:      models.SourceTypeUpload,
		SourceRef:       filename,
		DurationSeconds: 60,
		CreatedAt:       createdAt,
	}
}

func TestLibraryInsertGet(t *testing.T) {
	lib := newTestLibrary(t)

	rec := record("a.mp4", time.Now())
	if err := lib.Insert(rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := lib.Get("a.mp4")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DisplayName != rec.DisplayName || got.DurationSeconds != 60 {
		t.Errorf("Get returned %+v", got)
	}

	if _, err := lib.Get("missing.mp4"); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("Get missing = %v, want NotFound", err)
	}
}

func TestLibraryListOrdering(t *testing.T) {
	lib := newTestLibrary(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Same timestamp for b and c to exercise the filename tie-break.
	for _, r := range []models.VideoRecord{
		record("a.mp4", base.Add(-time.Hour)),
		record("c.mp4", base),
		record("b.mp4", base),
		record("d.mp4", base.Add(time.Hour)),
	} {
		if err := lib.Insert(r); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"d.mp4", "b.mp4", "c.mp4", "a.mp4"}

	// Ordering must be stable across repeated calls with no mutation.
	for i := 0; i < 3; i++ {
		recs, err := lib.List()
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(recs) != len(want) {
			t.Fatalf("List returned %d records, want %d", len(recs), len(want))
		}
		for j, rec := range recs {
			if rec.Filename != want[j] {
				t.Errorf("call %d: List()[%d] = %s, want %s", i, j, rec.Filename, want[j])
			}
		}
	}
}

func TestLibraryDelete(t *testing.T) {
	lib := newTestLibrary(t)

	if err := lib.Insert(record("a.mp4", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := lib.Delete("a.mp4"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := lib.Get("a.mp4"); !apperr.IsKind(err, apperr.NotFound) {
		t.Error("record should be gone after Delete")
	}
	if err := lib.Delete("a.mp4"); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("second Delete = %v, want NotFound", err)
	}
}

func TestLibraryClips(t *testing.T) {
	lib := newTestLibrary(t)

	clip := models.ClipRecord{
		ClipFilename:   "clip_1.mp4",
		SourceFilename: "a.mp4",
		WindowStart:    3,
		WindowEnd:      17,
		ClipPath:       "/tmp/clip_1.mp4",
		Summary:        "a moment",
		CreatedAt:      time.Now(),
	}
	if err := lib.AddClip(clip); err != nil {
		t.Fatalf("AddClip: %v", err)
	}
	other := clip
	other.ClipFilename = "clip_2.mp4"
	other.SourceFilename = "b.mp4"
	if err := lib.AddClip(other); err != nil {
		t.Fatal(err)
	}

	clips, err := lib.ClipsFor("a.mp4")
	if err != nil {
		t.Fatalf("ClipsFor: %v", err)
	}
	if len(clips) != 1 || clips[0].ClipFilename != "clip_1.mp4" {
		t.Errorf("ClipsFor returned %+v", clips)
	}

	if err := lib.DeleteClipsFor("a.mp4"); err != nil {
		t.Fatalf("DeleteClipsFor: %v", err)
	}
	clips, _ = lib.ClipsFor("a.mp4")
	if len(clips) != 0 {
		t.Error("clips for a.mp4 should be gone")
	}
	clips, _ = lib.ClipsFor("b.mp4")
	if len(clips) != 1 {
		t.Error("clips for b.mp4 should survive")
	}
}
