package session

import (
	"time"

	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

// FocusCategory is the category recorded for sessions composed in focus
// mode; their topic is the focus instruction.
const FocusCategory = "focus"

// Result is the outcome of composing a session. It is written once when
// the session starts.
type Result struct {
	ID       string           `json:"id" validate:"required"`
	Words    []vocab.WordPair `json:"word_pairs" validate:"required,min=1,dive"`
	Category string           `json:"category"`
	Topic    string           `json:"topic"`
	Date     time.Time        `json:"date" validate:"required"`

	Direction vocab.Direction `json:"translation_direction" validate:"required,oneof=source_to_target target_to_source"`

	// CustomInstruction is the focus instruction for focus sessions.
	CustomInstruction string `json:"custom_instruction,omitempty"`

	// ReviewCount is how many leading Words came from the learner's
	// mastery records; the rest were generated.
	ReviewCount int `json:"review_count" validate:"gte=0"`
}

// Focus reports whether the session was composed in focus mode.
func (r Result) Focus() bool {
	return r.CustomInstruction != ""
}

// Review returns the words drawn from mastery records.
func (r Result) Review() []vocab.WordPair {
	return r.Words[:min(r.ReviewCount, len(r.Words))]
}

// New returns the generated words.
func (r Result) New() []vocab.WordPair {
	return r.Words[min(r.ReviewCount, len(r.Words)):]
}

// Find returns the pair whose source word matches word, ignoring case.
func (r Result) Find(word string) (vocab.WordPair, bool) {
	key := vocab.NormalizeWord(word)
	for _, p := range r.Words {
		if p.Key() == key {
			return p, true
		}
	}
	return vocab.WordPair{}, false
}

// Progress tracks answers given during the current session.
type Progress struct {
	SessionID string          `json:"session_id" validate:"required"`
	Answers   map[string]bool `json:"answers"`
}

// Summary is the answer tally of a session.
type Summary struct {
	Total    int
	Answered int
	Correct  int
	Accuracy float64
}

// BuildSummary tallies progress against result.
func BuildSummary(result Result, progress Progress) Summary {
	s := Summary{Total: len(result.Words)}
	if progress.SessionID != result.ID {
		return s
	}
	for _, p := range result.Words {
		correct, ok := progress.Answers[p.Key()]
		if !ok {
			continue
		}
		s.Answered++
		if correct {
			s.Correct++
		}
	}
	if s.Answered > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Answered)
	}
	return s
}

type resultDoc struct {
	store.Envelope
	Result Result `json:"result"`
}

type progressDoc struct {
	store.Envelope
	Progress Progress `json:"progress"`
}
