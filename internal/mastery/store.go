package mastery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lexiz/internal/logger"
	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

// Store persists mastery records in a single KV document.
type Store struct {
	mu     sync.Mutex
	kv     store.KV
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides record ID generation.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger used to report discarded records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a Store over kv.
func NewStore(kv store.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = logger.OrDefault(s.logger)
	return s
}

// All returns every record in insertion order.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Records, nil
}

// List returns the records of one category and topic in insertion order.
// Scope matching ignores case and surrounding whitespace.
func (s *Store) List(ctx context.Context, category, topic string) ([]Record, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range all {
		if r.inScope(category, topic) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	all, err := s.All(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, r := range all {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("mastery record %q: %w", id, vocab.ErrNotFound)
}

// Track returns the record for pair within category and topic, creating
// it on first exposure. created reports whether a new record was written.
func (s *Store) Track(ctx context.Context, category, topic string, pair vocab.WordPair) (rec Record, created bool, err error) {
	if pair.Key() == "" || vocab.NormalizeWord(pair.TargetWord) == "" {
		return Record{}, false, fmt.Errorf("track: word and translation are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return Record{}, false, err
	}
	for _, r := range doc.Records {
		if r.inScope(category, topic) && r.Pair().Key() == pair.Key() {
			return r, false, nil
		}
	}

	now := s.now()
	rec = Record{
		ID:           s.newID(),
		Word:         pair.SourceWord,
		Translation:  pair.TargetWord,
		Context:      pair.Context,
		Category:     category,
		Topic:        topic,
		LastReviewed: now,
		CreatedAt:    now,
	}
	doc.Records = append(doc.Records, rec)
	if err := s.save(ctx, doc); err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// RecordReview applies one review outcome to the record with id: the
// review count always grows, the level moves one step up on success and
// one step down on failure within [0, MaxLevel]. The returned transition
// is nil when the lifecycle state did not change.
func (s *Store) RecordReview(ctx context.Context, id string, success bool) (Record, *StateTransition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return Record{}, nil, err
	}

	idx := -1
	for i, r := range doc.Records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Record{}, nil, fmt.Errorf("mastery record %q: %w", id, vocab.ErrNotFound)
	}

	rec := doc.Records[idx]
	from := rec.State()
	rec.TimesReviewed++
	rec.Level = nextLevel(rec.Level, success)
	rec.LastReviewed = s.now()
	doc.Records[idx] = rec

	if err := s.save(ctx, doc); err != nil {
		return Record{}, nil, err
	}

	var transition *StateTransition
	if to := rec.State(); to != from {
		transition = &StateTransition{
			RecordID: rec.ID,
			Word:     rec.Word,
			From:     from,
			To:       to,
			Trigger:  transitionTrigger(from, to),
		}
		s.logger.Debug("mastery state changed", "word", rec.Word, "from", from, "to", to)
	}
	return rec, transition, nil
}

// Delete removes the record with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, r := range doc.Records {
		if r.ID == id {
			doc.Records = append(doc.Records[:i], doc.Records[i+1:]...)
			return s.save(ctx, doc)
		}
	}
	return fmt.Errorf("mastery record %q: %w", id, vocab.ErrNotFound)
}

func (s *Store) load(ctx context.Context) (*document, error) {
	recs, err := store.LoadItems[Record](ctx, s.kv, recordsKey, "records", s.logger)
	if err != nil {
		return nil, fmt.Errorf("load mastery records: %w", err)
	}
	return &document{Records: recs}, nil
}

func (s *Store) save(ctx context.Context, doc *document) error {
	doc.Envelope = store.NewEnvelope()
	if err := store.SaveJSON(ctx, s.kv, recordsKey, doc); err != nil {
		return fmt.Errorf("save mastery records: %w", err)
	}
	return nil
}
