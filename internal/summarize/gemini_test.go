package summarize

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"clipfinder/internal/apperr"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSummarizeNoKeys(t *testing.T) {
	g := NewGemini(nil, "gemini-2.5-flash", testLogger())
	_, err := g.Summarize(context.Background(), "k", "text")
	if !apperr.IsKind(err, apperr.SummarizationFailed) {
		t.Errorf("Summarize without keys = %v, want SummarizationFailed", err)
	}
}

// Rotation is shared state across request goroutines; concurrent reads
// and rotations must not corrupt the cursor. Run with -race.
func TestKeyRotationConcurrent(t *testing.T) {
	keys := []string{"key-a", "key-b", "key-c"}
	g := NewGemini(keys, "gemini-2.5-flash", testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key, idx := g.activeKey()
				if idx < 0 || idx >= len(keys) {
					t.Errorf("key index %d out of range", idx)
					return
				}
				if key != keys[idx] {
					t.Errorf("key %q does not match index %d", key, idx)
					return
				}
				g.rotateKey()
			}
		}()
	}
	wg.Wait()

	if _, idx := g.activeKey(); idx < 0 || idx >= len(keys) {
		t.Errorf("final key index %d out of range", idx)
	}
}

func TestKeyRotationWraps(t *testing.T) {
	g := NewGemini([]string{"a", "b"}, "gemini-2.5-flash", testLogger())

	want := []string{"a", "b", "a", "b"}
	for i, w := range want {
		key, _ := g.activeKey()
		if key != w {
			t.Errorf("rotation %d: key = %q, want %q", i, key, w)
		}
		g.rotateKey()
	}
}
