// Package summarize generates clip summaries with Gemini. Summarization
// is best-effort everywhere it is used: callers substitute a placeholder
// on failure instead of failing the clip.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"clipfinder/internal/apperr"
)

const summaryPrompt = `You are summarizing a short clip cut from a longer video.
The viewer located this moment by searching for the keyword: %q

Write 1-2 sentences describing what is being discussed in the clip.
Mention the keyword's context if it appears; if it does not appear, just
summarize the text. Respond with the summary only, no preamble.

Clip transcript:
---
%s
---`

// Gemini is the genai-backed Engine. API keys rotate on quota errors.
// The instance is shared by concurrent requests, so the rotation cursor
// is guarded.
type Gemini struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	logger     *logrus.Logger
}

func NewGemini(apiKeys []string, model string, logger *logrus.Logger) *Gemini {
	return &Gemini{apiKeys: apiKeys, model: model, logger: logger}
}

// Summarize sends the clip text to Gemini and returns the summary.
func (g *Gemini) Summarize(ctx context.Context, keyword, transcriptText string) (string, error) {
	if len(g.apiKeys) == 0 {
		return "", apperr.New(apperr.SummarizationFailed, "no Gemini API key configured")
	}
	if strings.TrimSpace(transcriptText) == "" {
		transcriptText = fmt.Sprintf("Clip containing %q", keyword)
	}

	prompt := fmt.Sprintf(summaryPrompt, keyword, transcriptText)

	var lastErr error
	for range g.apiKeys {
		key, keyIndex := g.activeKey()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				g.logger.Warnf("Gemini key %d rate limited, rotating", keyIndex+1)
				g.rotateKey()
				lastErr = err
				continue
			}
			return "", apperr.Wrap(apperr.SummarizationFailed, err, "generate content")
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text string
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text += part.Text
				}
			}
			if strings.TrimSpace(text) != "" {
				return strings.TrimSpace(text), nil
			}
		}
		return "", apperr.New(apperr.SummarizationFailed, "empty response from Gemini")
	}

	return "", apperr.Wrap(apperr.SummarizationFailed, lastErr, "all API keys exhausted")
}

// activeKey snapshots the current key under the lock. Concurrent calls
// may see the same key and both rotate; that only skips a key, never
// corrupts the cursor.
func (g *Gemini) activeKey() (string, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.apiKeys[g.currentKey], g.currentKey
}

func (g *Gemini) rotateKey() {
	g.mu.Lock()
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	g.mu.Unlock()
}
