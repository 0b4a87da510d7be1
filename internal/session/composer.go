// Package session composes vocabulary sessions from review words and
// freshly generated words, and records the learner's answers.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/lexiz/internal/focus"
	"github.com/abhisek/lexiz/internal/logger"
	"github.com/abhisek/lexiz/internal/mastery"
	"github.com/abhisek/lexiz/internal/review"
	"github.com/abhisek/lexiz/internal/vocab"
	"github.com/abhisek/lexiz/internal/wordgen"
)

// MaxReviewWords is the most review words a session can hold.
const MaxReviewWords = review.PickCount

// Review fallback policies applied when the recommender cannot rank.
const (
	FallbackFirst = "first"
	FallbackFail  = "fail"
)

// ReviewQuota returns how many review words a session of totalCount
// words may hold: min(MaxReviewWords, floor(totalCount/2)).
func ReviewQuota(totalCount int) int {
	return max(0, min(MaxReviewWords, totalCount/2))
}

// Selector picks review records for a category and topic.
type Selector interface {
	Select(ctx context.Context, category, topic string) ([]mastery.Record, error)
}

// FocusState is the part of focus mode the composer drives.
type FocusState interface {
	Current() (focus.Session, bool)
	AddGeneratedWords(ctx context.Context, pairs []vocab.WordPair) ([]vocab.WordPair, error)
	ExcludedWords(ctx context.Context) ([]string, error)
	UpdateLastUsed(ctx context.Context) error
}

// Request describes the session to compose.
type Request struct {
	Category   string
	Topic      string
	TotalCount int
	Exclude    []string
	Direction  vocab.Direction
}

// Composition is a composed session before it is persisted.
type Composition struct {
	// Words holds the review words followed by the new words.
	Words  []vocab.WordPair
	Review []mastery.Record
	New    []vocab.WordPair

	// Instruction is set when the session was composed in focus mode.
	Instruction string

	// Reused is true when focus words were returned without generating.
	Reused bool
}

// Composer blends review words with generated ones.
type Composer struct {
	selector  Selector
	generator wordgen.Generator
	focus     FocusState
	fallback  string
	logger    *slog.Logger
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithFocus enables focus mode handling.
func WithFocus(f FocusState) ComposerOption {
	return func(c *Composer) { c.focus = f }
}

// WithReviewFallback sets the policy applied when the recommender is
// unavailable: FallbackFirst (default) or FallbackFail.
func WithReviewFallback(policy string) ComposerOption {
	return func(c *Composer) { c.fallback = policy }
}

// WithLogger sets the composer's logger.
func WithLogger(l *slog.Logger) ComposerOption {
	return func(c *Composer) { c.logger = l }
}

// NewComposer creates a Composer.
func NewComposer(selector Selector, generator wordgen.Generator, opts ...ComposerOption) *Composer {
	c := &Composer{selector: selector, generator: generator, fallback: FallbackFirst}
	for _, o := range opts {
		o(c)
	}
	c.logger = logger.OrDefault(c.logger)
	return c
}

// Compose builds the word list for one session. It makes at most one
// generator call and never retries. On failure no mastery or focus state
// has been changed.
func (c *Composer) Compose(ctx context.Context, req Request) (*Composition, error) {
	if req.TotalCount < 1 {
		return nil, vocab.ErrInvalidCount
	}
	if c.focus != nil {
		if s, ok := c.focus.Current(); ok {
			return c.composeFocus(ctx, req, s)
		}
	}

	candidates, err := c.reviewCandidates(ctx, req.Category, req.Topic)
	if err != nil {
		return nil, err
	}

	reviewRecs := candidates[:min(len(candidates), ReviewQuota(req.TotalCount))]
	reviewRecs = dedupRecords(reviewRecs)
	reviewWords := mastery.Pairs(reviewRecs)

	gen := wordgen.Request{
		Topic:     req.Topic,
		Category:  req.Category,
		Count:     req.TotalCount - len(reviewWords),
		Exclude:   req.Exclude,
		Direction: req.Direction,
	}
	if len(candidates) > 0 {
		gen.ContextWords = reviewWords
	}

	newWords, err := c.generate(ctx, gen, reviewWords)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("session composed",
		"category", req.Category, "topic", req.Topic,
		"review", len(reviewWords), "new", len(newWords))

	return &Composition{
		Words:  append(reviewWords, newWords...),
		Review: reviewRecs,
		New:    newWords,
	}, nil
}

// composeFocus returns the accumulated focus words verbatim, or generates
// a first batch for the instruction and appends it to the focus session.
func (c *Composer) composeFocus(ctx context.Context, req Request, s focus.Session) (*Composition, error) {
	if len(s.Words) > 0 {
		if err := c.focus.UpdateLastUsed(ctx); err != nil {
			return nil, err
		}
		return &Composition{Words: s.Words, New: s.Words, Instruction: s.Instruction, Reused: true}, nil
	}

	excluded, err := c.focus.ExcludedWords(ctx)
	if err != nil {
		return nil, err
	}
	excluded = append(excluded, req.Exclude...)

	words, err := c.generate(ctx, wordgen.Request{
		Topic:     s.Instruction,
		Count:     req.TotalCount,
		Exclude:   excluded,
		Direction: req.Direction,
	}, nil)
	if err != nil {
		return nil, err
	}

	if _, err := c.focus.AddGeneratedWords(ctx, words); err != nil {
		return nil, err
	}
	return &Composition{Words: words, New: words, Instruction: s.Instruction}, nil
}

// reviewCandidates runs the selector, applying the fallback policy when
// the recommender is unavailable.
func (c *Composer) reviewCandidates(ctx context.Context, category, topic string) ([]mastery.Record, error) {
	recs, err := c.selector.Select(ctx, category, topic)
	if err == nil {
		return recs, nil
	}

	var unavailable *review.UnavailableError
	if !errors.As(err, &unavailable) || c.fallback == FallbackFail {
		return nil, fmt.Errorf("select review words: %w", err)
	}

	c.logger.Warn("review recommender unavailable, using stored order",
		"category", category, "topic", topic, "error", unavailable.Err)
	return unavailable.Candidates[:min(len(unavailable.Candidates), review.PickCount)], nil
}

// generate calls the generator once and returns exactly req.Count words,
// none repeating taken. Under-delivery is a generation failure.
func (c *Composer) generate(ctx context.Context, req wordgen.Request, taken []vocab.WordPair) ([]vocab.WordPair, error) {
	words, err := c.generator.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, vocab.ErrGenerationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", vocab.ErrGenerationFailed, err)
	}

	seen := make(map[string]bool, len(taken))
	for _, p := range taken {
		seen[p.Key()] = true
	}
	words = vocab.Dedup(words, seen)
	if len(words) < req.Count {
		return nil, fmt.Errorf("%w: generator returned %d distinct words, want %d", vocab.ErrGenerationFailed, len(words), req.Count)
	}
	return words[:req.Count], nil
}

func dedupRecords(recs []mastery.Record) []mastery.Record {
	seen := make(map[string]bool, len(recs))
	out := make([]mastery.Record, 0, len(recs))
	for _, r := range recs {
		k := r.Pair().Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
