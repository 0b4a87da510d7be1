package vocab

import "errors"

var (
	// ErrGenerationFailed is returned when the word generator fails or
	// returns fewer pairs than requested. Callers decide whether to retry.
	ErrGenerationFailed = errors.New("word generation failed")

	// ErrGeneratorUnavailable is returned when the review recommender
	// cannot produce a ranking.
	ErrGeneratorUnavailable = errors.New("recommender unavailable")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCount is returned when a session is requested with fewer
	// than one word.
	ErrInvalidCount = errors.New("total count must be at least 1")

	// ErrNoActiveFocus is returned by focus operations that need an
	// active focus session.
	ErrNoActiveFocus = errors.New("no active focus session")
)
