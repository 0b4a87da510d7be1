// Package dictionary is the learner's personal dictionary: hand-curated
// word entries with case-insensitive duplicate suppression.
package dictionary

import (
	"time"

	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

// Entry is one personal dictionary item.
type Entry struct {
	ID                string    `json:"id" validate:"required"`
	SourceWord        string    `json:"source_word" validate:"required"`
	SourceLang        string    `json:"source_lang"`
	TargetWord        string    `json:"target_word" validate:"required"`
	TargetLang        string    `json:"target_lang"`
	ContextualMeaning string    `json:"contextual_meaning,omitempty"`
	PartOfSpeech      string    `json:"part_of_speech,omitempty"`
	Examples          []string  `json:"examples,omitempty"`
	DateAdded         time.Time `json:"date_added"`
}

// Key is the case-insensitive identity of an entry. No two stored
// entries share a Key.
func (e Entry) Key() string {
	return vocab.NormalizeWord(e.SourceWord) + "\x00" + vocab.NormalizeWord(e.TargetWord)
}

// Pair returns the entry as a WordPair, using the contextual meaning as
// context.
func (e Entry) Pair() vocab.WordPair {
	return vocab.WordPair{SourceWord: e.SourceWord, TargetWord: e.TargetWord, Context: e.ContextualMeaning}
}

const entriesKey = "dictionary/entries"

type document struct {
	store.Envelope
	Entries []Entry `json:"entries" validate:"dive"`
}
