package focus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

var (
	wA = vocab.WordPair{SourceWord: "avion", TargetWord: "plane"}
	wB = vocab.WordPair{SourceWord: "billet", TargetWord: "ticket"}
	wC = vocab.WordPair{SourceWord: "valise", TargetWord: "suitcase"}
)

func openTest(t *testing.T, kv store.KV, opts ...Option) *Manager {
	t.Helper()
	clock := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	m, err := Open(context.Background(), kv, append([]Option{WithClock(func() time.Time { return clock })}, opts...)...)
	require.NoError(t, err)
	return m
}

func TestInactiveByDefault(t *testing.T) {
	m := openTest(t, store.NewMemoryKV())
	ctx := context.Background()

	assert.False(t, m.Active())
	_, err := m.GetCurrentFocusWords()
	assert.True(t, errors.Is(err, vocab.ErrNoActiveFocus))
	_, err = m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wA})
	assert.True(t, errors.Is(err, vocab.ErrNoActiveFocus))
	assert.True(t, errors.Is(m.UpdateLastUsed(ctx), vocab.ErrNoActiveFocus))
	assert.NoError(t, m.ClearCurrentFocus(ctx))
}

func TestAccumulation(t *testing.T) {
	m := openTest(t, store.NewMemoryKV())
	ctx := context.Background()

	_, err := m.SetCurrentFocus(ctx, "Airport vocabulary")
	require.NoError(t, err)

	_, err = m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wA, wB})
	require.NoError(t, err)
	_, err = m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wC})
	require.NoError(t, err)

	words, err := m.GetCurrentFocusWords()
	require.NoError(t, err)
	assert.Equal(t, []vocab.WordPair{wA, wB, wC}, words)

	again, err := m.GetCurrentFocusWords()
	require.NoError(t, err)
	assert.Equal(t, words, again, "reading does not consume")
}

func TestAddSuppressesDuplicates(t *testing.T) {
	m := openTest(t, store.NewMemoryKV())
	ctx := context.Background()
	_, _ = m.SetCurrentFocus(ctx, "travel")

	_, err := m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wA, wB})
	require.NoError(t, err)

	added, err := m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{
		{SourceWord: "AVION", TargetWord: "airplane"},
		wC,
		{SourceWord: "Valise", TargetWord: "bag"},
	})
	require.NoError(t, err)
	assert.Equal(t, []vocab.WordPair{wC}, added)

	words, _ := m.GetCurrentFocusWords()
	assert.Len(t, words, 3)
}

func TestSetReplacesWithoutMerging(t *testing.T) {
	m := openTest(t, store.NewMemoryKV())
	ctx := context.Background()

	_, _ = m.SetCurrentFocus(ctx, "travel")
	_, _ = m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wA})

	s, err := m.SetCurrentFocus(ctx, "  kitchen  ")
	require.NoError(t, err)
	assert.Equal(t, "kitchen", s.Instruction)

	words, err := m.GetCurrentFocusWords()
	require.NoError(t, err)
	assert.Empty(t, words)

	_, err = m.SetCurrentFocus(ctx, "   ")
	assert.Error(t, err)
}

func TestPersistsAcrossOpen(t *testing.T) {
	kv := store.NewMemoryKV()
	ctx := context.Background()

	m := openTest(t, kv)
	_, _ = m.SetCurrentFocus(ctx, "travel")
	_, _ = m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wA, wB})
	require.NoError(t, m.UpdateLastUsed(ctx))

	reopened := openTest(t, kv)
	s, ok := reopened.Current()
	require.True(t, ok)
	assert.Equal(t, "travel", s.Instruction)
	assert.Equal(t, []vocab.WordPair{wA, wB}, s.Words)
	require.NotNil(t, s.LastUsed)

	require.NoError(t, reopened.ClearCurrentFocus(ctx))
	assert.False(t, openTest(t, kv).Active())
}

func TestHistoryFeedsExcludes(t *testing.T) {
	kv := store.NewMemoryKV()
	ctx := context.Background()
	m := openTest(t, kv)

	_, _ = m.SetCurrentFocus(ctx, "Travel")
	_, _ = m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wA, wB})
	require.NoError(t, m.ClearCurrentFocus(ctx))

	_, _ = m.SetCurrentFocus(ctx, "  travel ")
	ex, err := m.ExcludedWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"avion", "billet"}, ex)

	_, _ = m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wC})
	ex, err = m.ExcludedWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"avion", "billet", "valise"}, ex)

	_, _ = m.SetCurrentFocus(ctx, "kitchen")
	ex, err = m.ExcludedWords(ctx)
	require.NoError(t, err)
	assert.Empty(t, ex)
}

func TestHistoryLimit(t *testing.T) {
	m := openTest(t, store.NewMemoryKV(), WithHistoryLimit(2))
	ctx := context.Background()

	_, _ = m.SetCurrentFocus(ctx, "travel")
	_, _ = m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wA, wB, wC})

	hist, err := m.History(ctx, "TRAVEL")
	require.NoError(t, err)
	assert.Equal(t, []string{"billet", "valise"}, hist)

	off := openTest(t, store.NewMemoryKV(), WithHistoryLimit(0))
	_, _ = off.SetCurrentFocus(ctx, "travel")
	_, _ = off.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wA})
	hist, err = off.History(ctx, "travel")
	require.NoError(t, err)
	assert.Empty(t, hist)
}

type brokenKV struct{ *store.MemoryKV }

func (brokenKV) Set(context.Context, string, []byte) error {
	return &store.StorageError{Op: "set", Err: errors.New("read-only")}
}

func TestFailedWriteLeavesStateUnchanged(t *testing.T) {
	kv := store.NewMemoryKV()
	ctx := context.Background()
	m := openTest(t, kv)
	_, _ = m.SetCurrentFocus(ctx, "travel")
	_, _ = m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wA})

	m.kv = brokenKV{kv}
	_, err := m.AddWordsToCurrentFocus(ctx, []vocab.WordPair{wB})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrStorage))

	words, _ := m.GetCurrentFocusWords()
	assert.Equal(t, []vocab.WordPair{wA}, words)
}

func TestAddGeneratedWordsStampsInTheSameWrite(t *testing.T) {
	kv := store.NewMemoryKV()
	ctx := context.Background()
	m := openTest(t, kv)
	_, _ = m.SetCurrentFocus(ctx, "travel")

	added, err := m.AddGeneratedWords(ctx, []vocab.WordPair{wA, wB})
	require.NoError(t, err)
	assert.Equal(t, []vocab.WordPair{wA, wB}, added)

	reopened := openTest(t, kv)
	cur, ok := reopened.Current()
	require.True(t, ok)
	assert.Equal(t, []vocab.WordPair{wA, wB}, cur.Words)
	require.NotNil(t, cur.LastUsed)

	m.kv = brokenKV{kv}
	_, err = m.AddGeneratedWords(ctx, []vocab.WordPair{wC})
	require.Error(t, err)

	cur, _ = m.Current()
	assert.Equal(t, []vocab.WordPair{wA, wB}, cur.Words)
}
