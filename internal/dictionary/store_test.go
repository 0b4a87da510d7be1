package dictionary

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

var day = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, seed uint64) *Store {
	t.Helper()
	n := 0
	return NewStore(store.NewMemoryKV(),
		WithClock(func() time.Time { return day }),
		WithIDs(func() string { n++; return fmt.Sprintf("e%d", n) }),
		WithRand(rand.New(rand.NewPCG(seed, seed+1))),
	)
}

func TestAdd_SuppressesCaseInsensitiveDuplicates(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	first, added, err := s.Add(ctx, Entry{SourceWord: "casa", TargetWord: "maison", SourceLang: "es", TargetLang: "fr"})
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "e1", first.ID)
	assert.Equal(t, day, first.DateAdded)

	dup, added, err := s.Add(ctx, Entry{SourceWord: "CASA", TargetWord: "Maison"})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, first.ID, dup.ID)

	_, added, err = s.Add(ctx, Entry{SourceWord: "casa", TargetWord: "foyer"})
	require.NoError(t, err)
	assert.True(t, added, "same source word with another target is a different entry")

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAdd_RejectsBlankWords(t *testing.T) {
	s := newTestStore(t, 1)
	_, _, err := s.Add(context.Background(), Entry{SourceWord: "  ", TargetWord: "x"})
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	a, _, _ := s.Add(ctx, Entry{SourceWord: "perro", TargetWord: "chien"})
	_, _, _ = s.Add(ctx, Entry{SourceWord: "gato", TargetWord: "chat"})

	require.NoError(t, s.Remove(ctx, a.ID))
	assert.True(t, errors.Is(s.Remove(ctx, a.ID), vocab.ErrNotFound))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "gato", all[0].SourceWord)

	_, added, err := s.Add(ctx, Entry{SourceWord: "Perro", TargetWord: "chien"})
	require.NoError(t, err)
	assert.True(t, added, "a removed entry can be added again")
}

func TestSampleForExercise(t *testing.T) {
	s := newTestStore(t, 42)
	ctx := context.Background()

	words := []string{"uno", "dos", "tres", "cuatro", "cinco", "seis"}
	for _, w := range words {
		_, _, err := s.Add(ctx, Entry{SourceWord: w, TargetWord: w + "-fr"})
		require.NoError(t, err)
	}

	sample, err := s.SampleForExercise(ctx, 4)
	require.NoError(t, err)
	require.Len(t, sample, 4)
	seen := map[string]bool{}
	for _, e := range sample {
		assert.Contains(t, words, e.SourceWord)
		assert.False(t, seen[e.ID], "no entry sampled twice")
		seen[e.ID] = true
	}

	all, err := s.SampleForExercise(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, len(words))

	// Same seed, same order.
	other := newTestStore(t, 42)
	for _, w := range words {
		_, _, _ = other.Add(ctx, Entry{SourceWord: w, TargetWord: w + "-fr"})
	}
	again, err := other.SampleForExercise(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, entryWords(sample), entryWords(again))

	listed, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, words, entryWords(listed), "sampling does not reorder storage")
}

func TestSampleForExercise_Empty(t *testing.T) {
	s := newTestStore(t, 1)
	sample, err := s.SampleForExercise(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, sample)
}

func entryWords(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.SourceWord
	}
	return out
}

func TestLoad_DropsOnlyInvalidEntries(t *testing.T) {
	kv := store.NewMemoryKV()
	ctx := context.Background()
	raw := `{"version":1,"entries":[
		{"id":"e1","source_word":"casa","target_word":"maison"},
		{"id":"e2","source_word":"","target_word":"vide"},
		{"id":"e3","source_word":"perro","target_word":"chien"}]}`
	require.NoError(t, kv.Set(ctx, entriesKey, []byte(raw)))

	s := NewStore(kv, WithIDs(func() string { return "e4" }))
	_, _, err := s.Add(ctx, Entry{SourceWord: "gato", TargetWord: "chat"})
	require.NoError(t, err)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"casa", "perro", "gato"}, []string{all[0].SourceWord, all[1].SourceWord, all[2].SourceWord})

	backup, err := kv.Get(ctx, store.BackupKey(entriesKey))
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(backup))
}
