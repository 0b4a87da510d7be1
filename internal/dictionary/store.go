package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lexiz/internal/logger"
	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

// Store persists dictionary entries in a single KV document.
type Store struct {
	mu     sync.Mutex
	kv     store.KV
	now    func() time.Time
	newID  func() string
	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for DateAdded.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides entry ID generation.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithRand sets the random source used by SampleForExercise.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rng = r }
}

// WithLogger sets the logger used to report discarded records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a Store over kv.
func NewStore(kv store.KV, opts ...Option) *Store {
	seed := uint64(time.Now().UnixNano())
	s := &Store{
		kv:    kv,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
		rng:   rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = logger.OrDefault(s.logger)
	return s
}

// Add stores e unless an entry with the same case-insensitive source and
// target word already exists. added is false for duplicates, in which
// case the existing entry is returned. ID and DateAdded are filled in
// when empty.
func (s *Store) Add(ctx context.Context, e Entry) (stored Entry, added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	stored, added, err = s.insert(doc, e)
	if err != nil || !added {
		return stored, false, err
	}
	if err := s.save(ctx, doc); err != nil {
		return Entry{}, false, err
	}
	return stored, true, nil
}

// Remove deletes the entry with id.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, e := range doc.Entries {
		if e.ID == id {
			doc.Entries = append(doc.Entries[:i], doc.Entries[i+1:]...)
			return s.save(ctx, doc)
		}
	}
	return fmt.Errorf("dictionary entry %q: %w", id, vocab.ErrNotFound)
}

// List returns all entries in the order they were added.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// SampleForExercise returns up to n entries in random order. A
// non-positive n returns every entry shuffled.
func (s *Store) SampleForExercise(ctx context.Context, n int) ([]Entry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.rng.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
	s.mu.Unlock()

	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

// addAll inserts entries in one write and reports how many were new.
func (s *Store) addAll(ctx context.Context, entries []Entry) (added int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		_, ok, err := s.insert(doc, e)
		if err != nil {
			return 0, err
		}
		if ok {
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.save(ctx, doc)
}

func (s *Store) insert(doc *document, e Entry) (Entry, bool, error) {
	e.SourceWord = strings.TrimSpace(e.SourceWord)
	e.TargetWord = strings.TrimSpace(e.TargetWord)
	if e.SourceWord == "" || e.TargetWord == "" {
		return Entry{}, false, fmt.Errorf("dictionary entry needs both a source and a target word")
	}

	for _, existing := range doc.Entries {
		if existing.Key() == e.Key() {
			return existing, false, nil
		}
	}

	if e.ID == "" {
		e.ID = s.newID()
	}
	if e.DateAdded.IsZero() {
		e.DateAdded = s.now()
	}
	doc.Entries = append(doc.Entries, e)
	return e, true, nil
}

func (s *Store) load(ctx context.Context) (*document, error) {
	entries, err := store.LoadItems[Entry](ctx, s.kv, entriesKey, "entries", s.logger)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	return &document{Entries: entries}, nil
}

func (s *Store) save(ctx context.Context, doc *document) error {
	doc.Envelope = store.NewEnvelope()
	if err := store.SaveJSON(ctx, s.kv, entriesKey, doc); err != nil {
		return fmt.Errorf("save dictionary: %w", err)
	}
	return nil
}
