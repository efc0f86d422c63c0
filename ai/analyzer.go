// Package ai treats the language-model service as an opaque scorer: text and
// data go in, a sentiment score with a confidence and a short summary come
// out. Nothing downstream depends on how the score was produced, so a failed
// or disabled AI call degrades to the deterministic fallback.
package ai

import "context"

// Analysis is the opaque result of one AI call.
type Analysis struct {
	SentimentScore float64 // in [-1, 1], same sign convention as score package
	Confidence     float64 // in [0, 1]
	Summary        string
}

// Analyzer is the injection point for the AI collaborator. Implementations
// may be slow and may fail; callers must treat both as routine.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (Analysis, error)
}
