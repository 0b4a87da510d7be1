// Package review picks which previously-seen words a session revisits.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/lexiz/internal/mastery"
	"github.com/abhisek/lexiz/internal/vocab"
)

// PickCount is the number of words selected for review when more are
// available.
const PickCount = 6

// Candidate is a mastery record as presented to a Recommender.
type Candidate struct {
	ID            string `json:"id"`
	Word          string `json:"word"`
	Translation   string `json:"translation"`
	LastReviewed  string `json:"last_reviewed"`
	MasteryLevel  int    `json:"mastery_level"`
	TimesReviewed int    `json:"times_reviewed"`
}

// Recommender ranks candidates and returns exactly PickCount of their ids,
// most important first.
type Recommender interface {
	Rank(ctx context.Context, candidates []Candidate) ([]string, error)
}

// RecordSource lists the mastery records of one category and topic.
type RecordSource interface {
	List(ctx context.Context, category, topic string) ([]mastery.Record, error)
}

// UnavailableError reports that the recommender could not rank. It
// carries the candidates in stored order so callers can fall back.
type UnavailableError struct {
	Candidates []mastery.Record
	Err        error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%v: %v", vocab.ErrGeneratorUnavailable, e.Err)
}

func (e *UnavailableError) Unwrap() []error {
	return []error{vocab.ErrGeneratorUnavailable, e.Err}
}

// Selector chooses the records to review.
type Selector struct {
	records     RecordSource
	recommender Recommender
}

// NewSelector creates a Selector. recommender may be nil, in which case
// any scope with more than PickCount records is unavailable.
func NewSelector(records RecordSource, recommender Recommender) *Selector {
	return &Selector{records: records, recommender: recommender}
}

// Select returns the records to review for category and topic: all of
// them when there are at most PickCount, otherwise the recommender's
// picks in the recommender's order. It does not modify any record, so
// repeated calls without intervening reviews agree as far as the
// recommender does.
func (s *Selector) Select(ctx context.Context, category, topic string) ([]mastery.Record, error) {
	records, err := s.records.List(ctx, category, topic)
	if err != nil {
		return nil, fmt.Errorf("list review candidates: %w", err)
	}
	if len(records) <= PickCount {
		return records, nil
	}

	unavailable := func(err error) error {
		return &UnavailableError{Candidates: records, Err: err}
	}
	if s.recommender == nil {
		return nil, unavailable(fmt.Errorf("no recommender configured"))
	}

	ids, err := s.recommender.Rank(ctx, Candidates(records))
	if err != nil {
		return nil, unavailable(err)
	}

	byID := make(map[string]mastery.Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	if len(ids) != PickCount {
		return nil, unavailable(fmt.Errorf("recommender returned %d ids, want %d", len(ids), PickCount))
	}

	picked := make([]mastery.Record, 0, PickCount)
	seen := make(map[string]bool, PickCount)
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, unavailable(fmt.Errorf("recommender returned unknown id %q", id))
		}
		if seen[id] {
			return nil, unavailable(fmt.Errorf("recommender returned id %q twice", id))
		}
		seen[id] = true
		picked = append(picked, r)
	}
	return picked, nil
}

// Candidates converts records to their recommender view.
func Candidates(records []mastery.Record) []Candidate {
	out := make([]Candidate, len(records))
	for i, r := range records {
		out[i] = Candidate{
			ID:            r.ID,
			Word:          r.Word,
			Translation:   r.Translation,
			LastReviewed:  r.LastReviewed.UTC().Format(time.RFC3339),
			MasteryLevel:  r.Level,
			TimesReviewed: r.TimesReviewed,
		}
	}
	return out
}
