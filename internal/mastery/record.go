// Package mastery tracks how well the learner knows each word they have
// been exposed to, scoped by category and topic.
package mastery

import (
	"strings"
	"time"

	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

// Record is the mastery state of one word within a category and topic.
type Record struct {
	ID          string `json:"id" validate:"required"`
	Word        string `json:"word" validate:"required"`
	Translation string `json:"translation" validate:"required"`
	Context     string `json:"context,omitempty"`
	Category    string `json:"category"`
	Topic       string `json:"topic"`

	Level         int `json:"mastery_level" validate:"gte=0,lte=5"`
	TimesReviewed int `json:"times_reviewed" validate:"gte=0"`

	// LastReviewed is the time of the latest review, or of first exposure
	// for words that were never reviewed.
	LastReviewed time.Time `json:"last_reviewed"`
	CreatedAt    time.Time `json:"created_at"`
}

// Pair returns the record as a WordPair.
func (r Record) Pair() vocab.WordPair {
	return vocab.WordPair{SourceWord: r.Word, TargetWord: r.Translation, Context: r.Context}
}

// State returns the record's lifecycle state.
func (r Record) State() MasteryState {
	return StateOf(r.Level, r.TimesReviewed)
}

// Pairs converts records to WordPairs, preserving order.
func Pairs(records []Record) []vocab.WordPair {
	out := make([]vocab.WordPair, len(records))
	for i, r := range records {
		out[i] = r.Pair()
	}
	return out
}

func (r Record) inScope(category, topic string) bool {
	return sameScope(r.Category, category) && sameScope(r.Topic, topic)
}

func sameScope(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

const recordsKey = "mastery/records"

type document struct {
	store.Envelope
	Records []Record `json:"records" validate:"dive"`
}
