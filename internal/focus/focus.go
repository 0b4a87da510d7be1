// Package focus implements focus mode: a learner-chosen free-text
// instruction that replaces category and topic and accumulates generated
// words until the learner ends it.
package focus

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/lexiz/internal/logger"
	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

const (
	currentKey = "focus/current"
	historyKey = "focus/history"
)

// DefaultHistoryLimit is the number of source words remembered per
// instruction.
const DefaultHistoryLimit = 200

// Session is the active focus.
type Session struct {
	Instruction string           `json:"focus_instruction" validate:"required"`
	DateCreated time.Time        `json:"date_created"`
	LastUsed    *time.Time       `json:"last_used,omitempty"`
	Words       []vocab.WordPair `json:"words" validate:"dive"`
}

type currentDoc struct {
	store.Envelope
	Session Session `json:"session"`
}

type historyDoc struct {
	store.Envelope
	Instructions map[string][]string `json:"instructions"`
}

// Manager owns the focus state. It is loaded once with Open and keeps
// the active session in memory; every change is written through to the
// KV before it becomes visible.
type Manager struct {
	mu           sync.Mutex
	kv           store.KV
	now          func() time.Time
	historyLimit int
	logger       *slog.Logger

	current *Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithHistoryLimit sets how many source words are remembered per
// instruction. Zero disables the history.
func WithHistoryLimit(n int) Option {
	return func(m *Manager) { m.historyLimit = n }
}

// WithLogger sets the logger used to report discarded records.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Open loads the persisted focus session, if any.
func Open(ctx context.Context, kv store.KV, opts ...Option) (*Manager, error) {
	m := &Manager{
		kv:           kv,
		now:          func() time.Time { return time.Now().UTC() },
		historyLimit: DefaultHistoryLimit,
	}
	for _, o := range opts {
		o(m)
	}
	m.logger = logger.OrDefault(m.logger)

	var doc currentDoc
	found, err := store.LoadRecoverable(ctx, kv, currentKey, &doc, m.logger)
	if err != nil {
		return nil, fmt.Errorf("load focus session: %w", err)
	}
	if found {
		m.current = &doc.Session
	}
	return m, nil
}

// Active reports whether a focus session exists.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Current returns a copy of the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return cloneSession(*m.current), true
}

// SetCurrentFocus starts a fresh session for instruction, replacing any
// previous one without merging its words.
func (m *Manager) SetCurrentFocus(ctx context.Context, instruction string) (Session, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return Session{}, fmt.Errorf("focus instruction must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := Session{Instruction: instruction, DateCreated: m.now()}
	if err := m.saveCurrent(ctx, s); err != nil {
		return Session{}, err
	}
	m.current = &s
	return cloneSession(s), nil
}

// AddWordsToCurrentFocus appends pairs whose source word is not yet in
// the session, ignoring case, and remembers them in the instruction's
// history. It returns the pairs actually appended.
func (m *Manager) AddWordsToCurrentFocus(ctx context.Context, pairs []vocab.WordPair) ([]vocab.WordPair, error) {
	return m.addWords(ctx, pairs, false)
}

// AddGeneratedWords is AddWordsToCurrentFocus for a freshly composed
// session: the appended words and the LastUsed stamp are saved in a single
// write, so either both land or neither does.
func (m *Manager) AddGeneratedWords(ctx context.Context, pairs []vocab.WordPair) ([]vocab.WordPair, error) {
	return m.addWords(ctx, pairs, true)
}

func (m *Manager) addWords(ctx context.Context, pairs []vocab.WordPair, stamp bool) ([]vocab.WordPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, vocab.ErrNoActiveFocus
	}

	seen := make(map[string]bool, len(m.current.Words))
	for _, w := range m.current.Words {
		seen[w.Key()] = true
	}
	added := vocab.Dedup(pairs, seen)
	if len(added) == 0 && !stamp {
		return nil, nil
	}

	next := cloneSession(*m.current)
	next.Words = append(next.Words, added...)
	if stamp {
		now := m.now()
		next.LastUsed = &now
	}
	if err := m.saveCurrent(ctx, next); err != nil {
		return nil, err
	}
	m.current = &next

	if err := m.remember(ctx, next.Instruction, vocab.SourceWords(added)); err != nil {
		m.logger.Warn("failed to update focus history", "instruction", next.Instruction, "error", err)
	}
	return added, nil
}

// GetCurrentFocusWords returns the accumulated words without consuming
// them.
func (m *Manager) GetCurrentFocusWords() ([]vocab.WordPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, vocab.ErrNoActiveFocus
	}
	return slices.Clone(m.current.Words), nil
}

// UpdateLastUsed stamps the session with the current time.
func (m *Manager) UpdateLastUsed(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return vocab.ErrNoActiveFocus
	}
	next := cloneSession(*m.current)
	now := m.now()
	next.LastUsed = &now
	if err := m.saveCurrent(ctx, next); err != nil {
		return err
	}
	m.current = &next
	return nil
}

// ClearCurrentFocus ends focus mode and deletes the session. The
// instruction's history is kept. Clearing when inactive is a no-op.
func (m *Manager) ClearCurrentFocus(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.kv.Remove(ctx, currentKey); err != nil {
		return fmt.Errorf("clear focus session: %w", err)
	}
	m.current = nil
	return nil
}

// ExcludedWords returns the source words already generated for the
// active instruction, from its history and from the session itself.
func (m *Manager) ExcludedWords(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, vocab.ErrNoActiveFocus
	}

	hist, err := m.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	words := slices.Clone(hist.Instructions[historyKeyFor(m.current.Instruction)])
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[vocab.NormalizeWord(w)] = true
	}
	for _, p := range m.current.Words {
		if !seen[p.Key()] {
			seen[p.Key()] = true
			words = append(words, p.SourceWord)
		}
	}
	return words, nil
}

// History returns the remembered source words for instruction.
func (m *Manager) History(ctx context.Context, instruction string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist, err := m.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(hist.Instructions[historyKeyFor(instruction)]), nil
}

func (m *Manager) remember(ctx context.Context, instruction string, words []string) error {
	if m.historyLimit <= 0 || len(words) == 0 {
		return nil
	}

	hist, err := m.loadHistory(ctx)
	if err != nil {
		return err
	}

	key := historyKeyFor(instruction)
	list := hist.Instructions[key]
	known := make(map[string]bool, len(list))
	for _, w := range list {
		known[vocab.NormalizeWord(w)] = true
	}
	for _, w := range words {
		if k := vocab.NormalizeWord(w); !known[k] {
			known[k] = true
			list = append(list, w)
		}
	}
	if len(list) > m.historyLimit {
		list = list[len(list)-m.historyLimit:]
	}
	hist.Instructions[key] = list

	hist.Envelope = store.NewEnvelope()
	if err := store.SaveJSON(ctx, m.kv, historyKey, hist); err != nil {
		return fmt.Errorf("save focus history: %w", err)
	}
	return nil
}

func (m *Manager) loadHistory(ctx context.Context) (*historyDoc, error) {
	var doc historyDoc
	if _, err := store.LoadRecoverable(ctx, m.kv, historyKey, &doc, m.logger); err != nil {
		return nil, fmt.Errorf("load focus history: %w", err)
	}
	if doc.Instructions == nil {
		doc.Instructions = make(map[string][]string)
	}
	return &doc, nil
}

func (m *Manager) saveCurrent(ctx context.Context, s Session) error {
	doc := currentDoc{Envelope: store.NewEnvelope(), Session: s}
	if err := store.SaveJSON(ctx, m.kv, currentKey, doc); err != nil {
		return fmt.Errorf("save focus session: %w", err)
	}
	return nil
}

func historyKeyFor(instruction string) string {
	return strings.Join(strings.Fields(strings.ToLower(instruction)), " ")
}

func cloneSession(s Session) Session {
	s.Words = slices.Clone(s.Words)
	if s.LastUsed != nil {
		t := *s.LastUsed
		s.LastUsed = &t
	}
	return s
}
