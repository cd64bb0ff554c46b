package summarize

import "context"

// Engine produces a short summary of clip transcript text. The keyword is
// a hint for the model, not a constraint: it may be absent from the text.
type Engine interface {
	Summarize(ctx context.Context, keyword, transcriptText string) (string, error)
}
