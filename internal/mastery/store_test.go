package mastery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *store.MemoryKV, *fakeClock) {
	t.Helper()
	kv := store.NewMemoryKV()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	n := 0
	s := NewStore(kv,
		WithClock(clock.now),
		WithIDs(func() string { n++; return fmt.Sprintf("rec-%d", n) }),
	)
	return s, kv, clock
}

func pair(src, tgt string) vocab.WordPair {
	return vocab.WordPair{SourceWord: src, TargetWord: tgt}
}

func TestTrack_CreatesOnFirstExposureOnly(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	rec, created, err := s.Track(ctx, "vocabulary", "Travail", pair("bureau", "office"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, 0, rec.Level)
	assert.Equal(t, 0, rec.TimesReviewed)
	assert.Equal(t, clock.t, rec.LastReviewed)
	assert.Equal(t, StateNew, rec.State())

	again, created, err := s.Track(ctx, "Vocabulary", " travail ", pair("BUREAU", "desk"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, again.ID)

	_, created, err = s.Track(ctx, "vocabulary", "Maison", pair("bureau", "office"))
	require.NoError(t, err)
	assert.True(t, created, "same word in another topic is a separate record")

	_, _, err = s.Track(ctx, "vocabulary", "Travail", pair(" ", "x"))
	assert.Error(t, err)
}

func TestList_ScopesByCategoryAndTopic(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	for _, w := range []string{"salaire", "patron", "collègue"} {
		_, _, err := s.Track(ctx, "vocabulary", "Travail", pair(w, w+"-en"))
		require.NoError(t, err)
	}
	_, _, err := s.Track(ctx, "vocabulary", "Cuisine", pair("four", "oven"))
	require.NoError(t, err)

	got, err := s.List(ctx, "vocabulary", "Travail")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"salaire", "patron", "collègue"}, vocab.SourceWords(Pairs(got)))

	none, err := s.List(ctx, "grammar", "Travail")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordReview_LevelsAndCounters(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	rec, _, err := s.Track(ctx, "vocabulary", "Travail", pair("usine", "factory"))
	require.NoError(t, err)

	clock.advance(time.Hour)
	got, tr, err := s.RecordReview(ctx, rec.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Level, "level is floored at zero")
	assert.Equal(t, 1, got.TimesReviewed)
	assert.Equal(t, clock.t, got.LastReviewed)
	require.NotNil(t, tr)
	assert.Equal(t, StateNew, tr.From)
	assert.Equal(t, StateLearning, tr.To)
	assert.Equal(t, TriggerFirstReview, tr.Trigger)

	var last *StateTransition
	for i := 0; i < MaxLevel+2; i++ {
		got, last, err = s.RecordReview(ctx, rec.ID, true)
		require.NoError(t, err)
		if i == MaxLevel-1 {
			require.NotNil(t, last)
			assert.Equal(t, TriggerReachedMax, last.Trigger)
		}
	}
	assert.Nil(t, last, "staying mastered is not a transition")
	assert.Equal(t, MaxLevel, got.Level, "level is capped")
	assert.Equal(t, MaxLevel+3, got.TimesReviewed)

	got, tr, err = s.RecordReview(ctx, rec.ID, false)
	require.NoError(t, err)
	assert.Equal(t, MaxLevel-1, got.Level)
	require.NotNil(t, tr)
	assert.Equal(t, StateMastered, tr.From)
	assert.Equal(t, TriggerLostMastery, tr.Trigger)

	persisted, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, got, persisted)
}

func TestRecordReview_TimesReviewedStrictlyIncreases(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	rec, _, err := s.Track(ctx, "c", "t", pair("a", "b"))
	require.NoError(t, err)

	prev := rec.TimesReviewed
	for _, ok := range []bool{true, false, false, true, false} {
		got, _, err := s.RecordReview(ctx, rec.ID, ok)
		require.NoError(t, err)
		assert.Greater(t, got.TimesReviewed, prev)
		assert.GreaterOrEqual(t, got.Level, 0)
		assert.LessOrEqual(t, got.Level, MaxLevel)
		prev = got.TimesReviewed
	}
}

func TestUnknownIDsAreNotFound(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.RecordReview(ctx, "missing", true)
	assert.True(t, errors.Is(err, vocab.ErrNotFound))

	_, err = s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, vocab.ErrNotFound))

	assert.True(t, errors.Is(s.Delete(ctx, "missing"), vocab.ErrNotFound))
}

func TestDelete(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	a, _, _ := s.Track(ctx, "c", "t", pair("a", "1"))
	b, _, _ := s.Track(ctx, "c", "t", pair("b", "2"))

	require.NoError(t, s.Delete(ctx, a.ID))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestCorruptDocumentIsRecoverable(t *testing.T) {
	s, kv, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, recordsKey, []byte(`not json`)))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, created, err := s.Track(ctx, "c", "t", pair("a", "b"))
	require.NoError(t, err)
	assert.True(t, created)

	backup, err := kv.Get(ctx, store.BackupKey(recordsKey))
	require.NoError(t, err)
	assert.Equal(t, "not json", string(backup))
}

func TestCorruptRecordKeepsValidSiblings(t *testing.T) {
	s, kv, _ := newTestStore(t)
	ctx := context.Background()

	for _, w := range []string{"un", "deux", "trois"} {
		_, _, err := s.Track(ctx, "c", "t", pair(w, w+"-en"))
		require.NoError(t, err)
	}

	raw, err := kv.Get(ctx, recordsKey)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	doc["records"].([]any)[1].(map[string]any)["mastery_level"] = MaxLevel + 1
	corrupt, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, recordsKey, corrupt))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"un", "trois"}, words(all))

	_, _, err = s.Track(ctx, "c", "t", pair("quatre", "four"))
	require.NoError(t, err)

	all, err = s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"un", "trois", "quatre"}, words(all))

	backup, err := kv.Get(ctx, store.BackupKey(recordsKey))
	require.NoError(t, err)
	assert.JSONEq(t, string(corrupt), string(backup), "dropped record stays recoverable")
}

func words(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Word
	}
	return out
}

type failingKV struct{ store.KV }

func (failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, &store.StorageError{Op: "get", Err: errors.New("disk gone")}
}

func TestStorageFailurePropagates(t *testing.T) {
	s := NewStore(failingKV{})
	_, err := s.List(context.Background(), "c", "t")
	assert.True(t, errors.Is(err, store.ErrStorage))
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		level, reviewed int
		want            MasteryState
	}{
		{0, 0, StateNew},
		{0, 3, StateLearning},
		{2, 2, StateLearning},
		{MaxLevel, 9, StateMastered},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StateOf(tt.level, tt.reviewed))
	}
}
