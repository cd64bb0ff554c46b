package transcribe

import (
	"testing"

	"clipfinder/models"
)

func TestParseWhisperJSON(t *testing.T) {
	data := []byte(`{
		"transcription": [
			{"text": " Hello there. ", "offsets": {"from": 0, "to": 2500}},
			{"text": " General Kenobi. ", "offsets": {"from": 2500, "to": 5000}}
		]
	}`)

	got, err := ParseWhisperJSON(data)
	if err != nil {
		t.Fatalf("ParseWhisperJSON: %v", err)
	}
	want := models.Transcript{
		{Text: "Hello there.", Start: 0, End: 2.5},
		{Text: "General Kenobi.", Start: 2.5, End: 5},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d segments, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if err := got.Validate(); err != nil {
		t.Errorf("parsed transcript invalid: %v", err)
	}
}

func TestParseWhisperJSONNormalizes(t *testing.T) {
	// Out of order, overlapping by a few ms, with empty and degenerate
	// segments mixed in. The parser must still produce a valid transcript.
	data := []byte(`{
		"transcription": [
			{"text": "second", "offsets": {"from": 2000, "to": 4000}},
			{"text": "first", "offsets": {"from": 0, "to": 2050}},
			{"text": "   ", "offsets": {"from": 4000, "to": 5000}},
			{"text": "zero width", "offsets": {"from": 6000, "to": 6000}},
			{"text": "third", "offsets": {"from": 3900, "to": 6000}}
		]
	}`)

	got, err := ParseWhisperJSON(data)
	if err != nil {
		t.Fatalf("ParseWhisperJSON: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("normalized transcript still invalid: %v\n%+v", err, got)
	}

	if len(got) != 3 {
		t.Fatalf("got %d segments, want 3: %+v", len(got), got)
	}
	if got[0].Text != "first" || got[1].Text != "second" || got[2].Text != "third" {
		t.Errorf("order = %q %q %q", got[0].Text, got[1].Text, got[2].Text)
	}
	// The overlap was resolved by clamping starts forward.
	if got[1].Start != got[0].End {
		t.Errorf("second start = %v, want clamped to %v", got[1].Start, got[0].End)
	}
}

func TestParseWhisperJSONEmpty(t *testing.T) {
	got, err := ParseWhisperJSON([]byte(`{"transcription": []}`))
	if err != nil {
		t.Fatalf("ParseWhisperJSON: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d segments, want 0", len(got))
	}
}

func TestParseWhisperJSONMalformed(t *testing.T) {
	if _, err := ParseWhisperJSON([]byte(`not json`)); err == nil {
		t.Error("malformed input should fail")
	}
}
