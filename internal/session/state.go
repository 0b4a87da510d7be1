package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/lexiz/internal/logger"
	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

const (
	currentKey  = "session/current"
	progressKey = "session/progress"
)

// StateStore persists the in-progress session.
type StateStore struct {
	kv     store.KV
	logger *slog.Logger
}

// NewStateStore creates a StateStore over kv.
func NewStateStore(kv store.KV, l *slog.Logger) *StateStore {
	return &StateStore{kv: kv, logger: logger.OrDefault(l)}
}

// Save replaces the current session with result in a single write.
// Progress belongs to a session id, so answers recorded for the previous
// session are ignored from then on and overwritten by the first answer.
func (s *StateStore) Save(ctx context.Context, result Result) error {
	if err := store.SaveJSON(ctx, s.kv, currentKey, resultDoc{Envelope: store.NewEnvelope(), Result: result}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the current session. It fails with vocab.ErrNotFound when
// there is none or the stored one is unreadable.
func (s *StateStore) Load(ctx context.Context) (Result, error) {
	var doc resultDoc
	found, err := store.LoadRecoverable(ctx, s.kv, currentKey, &doc, s.logger)
	if err != nil {
		return Result{}, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return Result{}, fmt.Errorf("current session: %w", vocab.ErrNotFound)
	}
	return doc.Result, nil
}

// Clear drops the current session and its progress.
func (s *StateStore) Clear(ctx context.Context) error {
	for _, key := range []string{currentKey, progressKey} {
		if err := s.kv.Remove(ctx, key); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

// Progress returns the answers recorded for the session with sessionID.
func (s *StateStore) Progress(ctx context.Context, sessionID string) (Progress, error) {
	var doc progressDoc
	found, err := store.LoadRecoverable(ctx, s.kv, progressKey, &doc, s.logger)
	if err != nil {
		return Progress{}, fmt.Errorf("load session progress: %w", err)
	}
	if !found || doc.Progress.SessionID != sessionID {
		return Progress{SessionID: sessionID, Answers: map[string]bool{}}, nil
	}
	if doc.Progress.Answers == nil {
		doc.Progress.Answers = map[string]bool{}
	}
	return doc.Progress, nil
}

func (s *StateStore) saveProgress(ctx context.Context, p Progress) error {
	if err := store.SaveJSON(ctx, s.kv, progressKey, progressDoc{Envelope: store.NewEnvelope(), Progress: p}); err != nil {
		return fmt.Errorf("save session progress: %w", err)
	}
	return nil
}
