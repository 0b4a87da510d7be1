// Package wordgen produces fresh vocabulary pairs.
package wordgen

import (
	"context"

	"github.com/abhisek/lexiz/internal/vocab"
)

// Request describes the words wanted from a Generator.
type Request struct {
	// Topic is the subject, or the free-text instruction in focus mode.
	Topic    string
	Category string

	Count int

	// ContextWords are words the learner is reviewing in the same session.
	// New words should fit alongside them without repeating them.
	ContextWords []vocab.WordPair

	// Exclude lists source words that must not be returned.
	Exclude []string

	Direction vocab.Direction
}

// Generator produces exactly Request.Count distinct word pairs or fails
// with an error wrapping vocab.ErrGenerationFailed.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]vocab.WordPair, error)
}
