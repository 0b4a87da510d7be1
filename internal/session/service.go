package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lexiz/internal/mastery"
	"github.com/abhisek/lexiz/internal/vocab"
)

// MasteryTracker records exposure and review outcomes.
type MasteryTracker interface {
	Track(ctx context.Context, category, topic string, pair vocab.WordPair) (mastery.Record, bool, error)
	RecordReview(ctx context.Context, id string, success bool) (mastery.Record, *mastery.StateTransition, error)
}

// DirectionSource resolves the translation direction of a session.
type DirectionSource interface {
	Resolve(override vocab.Direction) vocab.Direction
}

// Service starts sessions and records answers against them.
type Service struct {
	composer   *Composer
	state      *StateStore
	mastery    MasteryTracker
	directions DirectionSource
	now        func() time.Time
	newID      func() string
}

// NewService wires a Service.
func NewService(composer *Composer, state *StateStore, tracker MasteryTracker, directions DirectionSource) *Service {
	return &Service{
		composer:   composer,
		state:      state,
		mastery:    tracker,
		directions: directions,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// Start composes a session and saves it as the current one. An unset
// req.Direction uses the global direction.
func (s *Service) Start(ctx context.Context, req Request) (Result, error) {
	req.Direction = s.directions.Resolve(req.Direction)

	comp, err := s.composer.Compose(ctx, req)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		ID:          s.newID(),
		Words:       comp.Words,
		Category:    req.Category,
		Topic:       req.Topic,
		Date:        s.now(),
		Direction:   req.Direction,
		ReviewCount: len(comp.Review),
	}
	if comp.Instruction != "" {
		result.Category = FocusCategory
		result.Topic = comp.Instruction
		result.CustomInstruction = comp.Instruction
	}

	if err := s.state.Save(ctx, result); err != nil {
		return Result{}, err
	}
	return result, nil
}

// Current returns the current session and its answer tally.
func (s *Service) Current(ctx context.Context) (Result, Summary, error) {
	result, err := s.state.Load(ctx)
	if err != nil {
		return Result{}, Summary{}, err
	}
	progress, err := s.state.Progress(ctx, result.ID)
	if err != nil {
		return Result{}, Summary{}, err
	}
	return result, BuildSummary(result, progress), nil
}

// AnswerOutcome reports the effect of one answer.
type AnswerOutcome struct {
	Pair       vocab.WordPair
	Correct    bool
	Record     mastery.Record
	Transition *mastery.StateTransition
	Summary    Summary
}

// Answer checks response against the pair shown as prompt in the current
// session's direction and records the outcome.
func (s *Service) Answer(ctx context.Context, prompt, response string) (AnswerOutcome, error) {
	result, err := s.state.Load(ctx)
	if err != nil {
		return AnswerOutcome{}, err
	}
	pair, ok := findPrompt(result, prompt)
	if !ok {
		return AnswerOutcome{}, fmt.Errorf("%q is not in the current session: %w", prompt, vocab.ErrNotFound)
	}
	return s.record(ctx, result, pair, CheckAnswer(pair, result.Direction, response))
}

// RecordAnswer records a self-graded answer for the pair whose source
// word is word.
func (s *Service) RecordAnswer(ctx context.Context, word string, correct bool) (AnswerOutcome, error) {
	result, err := s.state.Load(ctx)
	if err != nil {
		return AnswerOutcome{}, err
	}
	pair, ok := result.Find(word)
	if !ok {
		return AnswerOutcome{}, fmt.Errorf("%q is not in the current session: %w", word, vocab.ErrNotFound)
	}
	return s.record(ctx, result, pair, correct)
}

// Clear drops the current session.
func (s *Service) Clear(ctx context.Context) error {
	return s.state.Clear(ctx)
}

// record tracks the pair on first exposure, then applies the review.
func (s *Service) record(ctx context.Context, result Result, pair vocab.WordPair, correct bool) (AnswerOutcome, error) {
	rec, _, err := s.mastery.Track(ctx, result.Category, result.Topic, pair)
	if err != nil {
		return AnswerOutcome{}, err
	}
	rec, transition, err := s.mastery.RecordReview(ctx, rec.ID, correct)
	if err != nil {
		return AnswerOutcome{}, err
	}

	progress, err := s.state.Progress(ctx, result.ID)
	if err != nil {
		return AnswerOutcome{}, err
	}
	progress.Answers[pair.Key()] = correct
	if err := s.state.saveProgress(ctx, progress); err != nil {
		return AnswerOutcome{}, err
	}

	return AnswerOutcome{
		Pair:       pair,
		Correct:    correct,
		Record:     rec,
		Transition: transition,
		Summary:    BuildSummary(result, progress),
	}, nil
}

// Prompt returns the side of pair shown to the learner.
func Prompt(pair vocab.WordPair, d vocab.Direction) string {
	if d == vocab.TargetToSource {
		return pair.TargetWord
	}
	return pair.SourceWord
}

// Expected returns the side of pair the learner must answer with.
func Expected(pair vocab.WordPair, d vocab.Direction) string {
	if d == vocab.TargetToSource {
		return pair.SourceWord
	}
	return pair.TargetWord
}

// CheckAnswer compares response with the expected side of pair, ignoring
// case and surrounding whitespace. Several accepted translations may be
// separated by "/" or ",".
func CheckAnswer(pair vocab.WordPair, d vocab.Direction, response string) bool {
	got := vocab.NormalizeWord(response)
	if got == "" {
		return false
	}
	for _, want := range strings.FieldsFunc(Expected(pair, d), func(r rune) bool { return r == '/' || r == ',' }) {
		if vocab.NormalizeWord(want) == got {
			return true
		}
	}
	return false
}

func findPrompt(result Result, prompt string) (vocab.WordPair, bool) {
	key := vocab.NormalizeWord(prompt)
	for _, p := range result.Words {
		if vocab.NormalizeWord(Prompt(p, result.Direction)) == key {
			return p, true
		}
	}
	return vocab.WordPair{}, false
}
