// Package preferences persists learner preferences that outlive a session.
package preferences

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

const directionKey = "preferences/direction"

type directionDoc struct {
	store.Envelope
	Direction vocab.Direction `json:"direction" validate:"required,oneof=source_to_target target_to_source"`
}

// DirectionStore holds the global translation direction. It is loaded
// once and written through on every change.
type DirectionStore struct {
	mu      sync.Mutex
	kv      store.KV
	current vocab.Direction
}

// OpenDirectionStore loads the persisted direction, using def when none
// is stored or the stored value is unreadable.
func OpenDirectionStore(ctx context.Context, kv store.KV, def vocab.Direction) (*DirectionStore, error) {
	if !def.Valid() {
		def = vocab.DefaultDirection
	}
	s := &DirectionStore{kv: kv, current: def}

	var doc directionDoc
	found, err := store.LoadRecoverable(ctx, kv, directionKey, &doc, nil)
	if err != nil {
		return nil, fmt.Errorf("load translation direction: %w", err)
	}
	if found {
		s.current = doc.Direction
	}
	return s, nil
}

// Get returns the current direction.
func (s *DirectionStore) Get() vocab.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Resolve returns override when it is set, else the current direction.
func (s *DirectionStore) Resolve(override vocab.Direction) vocab.Direction {
	if override.Valid() {
		return override
	}
	return s.Get()
}

// Set persists d as the global direction.
func (s *DirectionStore) Set(ctx context.Context, d vocab.Direction) error {
	if !d.Valid() {
		return fmt.Errorf("invalid translation direction %q", d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := directionDoc{Envelope: store.NewEnvelope(), Direction: d}
	if err := store.SaveJSON(ctx, s.kv, directionKey, doc); err != nil {
		return fmt.Errorf("save translation direction: %w", err)
	}
	s.current = d
	return nil
}
