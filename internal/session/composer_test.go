package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiz/internal/focus"
	"github.com/abhisek/lexiz/internal/mastery"
	"github.com/abhisek/lexiz/internal/review"
	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
	"github.com/abhisek/lexiz/internal/wordgen"
)

// fakeGenerator returns req.Count fresh words per call unless err or
// short is set.
type fakeGenerator struct {
	calls []wordgen.Request
	err   error
	short int
}

func (g *fakeGenerator) Generate(_ context.Context, req wordgen.Request) ([]vocab.WordPair, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	n := req.Count - g.short
	out := make([]vocab.WordPair, n)
	for i := range out {
		out[i] = vocab.WordPair{
			SourceWord: fmt.Sprintf("neuf%d-%d", len(g.calls), i),
			TargetWord: fmt.Sprintf("new%d-%d", len(g.calls), i),
		}
	}
	return out, nil
}

type fixedRecommender struct {
	ids []string
	err error
}

func (f fixedRecommender) Rank(context.Context, []review.Candidate) ([]string, error) {
	return f.ids, f.err
}

type fixture struct {
	kv      *store.MemoryKV
	mastery *mastery.Store
	gen     *fakeGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := store.NewMemoryKV()
	n := 0
	return &fixture{
		kv: kv,
		mastery: mastery.NewStore(kv, mastery.WithIDs(func() string {
			n++
			return fmt.Sprintf("r%d", n)
		})),
		gen: &fakeGenerator{},
	}
}

// seed tracks n words in category/topic with ids r1..rn.
func (f *fixture) seed(t *testing.T, category, topic string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, _, err := f.mastery.Track(context.Background(), category, topic, vocab.WordPair{
			SourceWord: fmt.Sprintf("mot%d", i),
			TargetWord: fmt.Sprintf("word%d", i),
		})
		require.NoError(t, err)
	}
}

func (f *fixture) composer(rec review.Recommender, opts ...ComposerOption) *Composer {
	return NewComposer(review.NewSelector(f.mastery, rec), f.gen, opts...)
}

func recordIDs(recs []mastery.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestReviewQuota(t *testing.T) {
	tests := []struct{ total, want int }{
		{1, 0}, {2, 1}, {3, 1}, {5, 2}, {10, 5}, {12, 6}, {13, 6}, {40, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReviewQuota(tt.total), "total=%d", tt.total)
	}
}

func TestCompose_TravailScenario(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "vocabulary", "Travail", 8)
	rec := fixedRecommender{ids: []string{"r8", "r3", "r1", "r6", "r2", "r5"}}

	comp, err := f.composer(rec).Compose(context.Background(), Request{
		Category: "vocabulary", Topic: "Travail", TotalCount: 10, Direction: vocab.SourceToTarget,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"r8", "r3", "r1", "r6", "r2"}, recordIDs(comp.Review))
	assert.Len(t, comp.New, 5)
	assert.Len(t, comp.Words, 10)
	assert.Equal(t, []string{"mot8", "mot3", "mot1", "mot6", "mot2"}, vocab.SourceWords(comp.Words[:5]))

	require.Len(t, f.gen.calls, 1)
	call := f.gen.calls[0]
	assert.Equal(t, 5, call.Count)
	assert.Equal(t, "Travail", call.Topic)
	assert.Equal(t, "vocabulary", call.Category)
	assert.Equal(t, mastery.Pairs(comp.Review), call.ContextWords)
}

func TestCompose_NoRecordsScenario(t *testing.T) {
	f := newFixture(t)

	comp, err := f.composer(review.HeuristicRecommender{}).Compose(context.Background(), Request{
		Category: "vocabulary", Topic: "Maison", TotalCount: 3, Exclude: []string{"porte"},
	})
	require.NoError(t, err)

	assert.Empty(t, comp.Review)
	assert.Len(t, comp.Words, 3)
	require.Len(t, f.gen.calls, 1)
	assert.Equal(t, 3, f.gen.calls[0].Count)
	assert.Empty(t, f.gen.calls[0].ContextWords)
	assert.Equal(t, []string{"porte"}, f.gen.calls[0].Exclude)
}

func TestCompose_CountProperties(t *testing.T) {
	for records := 0; records <= 9; records++ {
		for total := 1; total <= 16; total++ {
			t.Run(fmt.Sprintf("records=%d/total=%d", records, total), func(t *testing.T) {
				f := newFixture(t)
				f.seed(t, "c", "t", records)

				comp, err := f.composer(review.HeuristicRecommender{}).Compose(context.Background(), Request{
					Category: "c", Topic: "t", TotalCount: total,
				})
				require.NoError(t, err)

				quota := ReviewQuota(total)
				assert.LessOrEqual(t, len(comp.Review), quota)
				assert.Equal(t, min(records, quota), len(comp.Review))
				assert.Equal(t, total, len(comp.Review)+len(comp.New))
				assert.Len(t, f.gen.calls, 1)

				seen := map[string]bool{}
				for _, w := range comp.Words {
					assert.False(t, seen[w.Key()], "duplicate %q", w.SourceWord)
					seen[w.Key()] = true
				}
			})
		}
	}
}

func TestCompose_RejectsZeroCount(t *testing.T) {
	f := newFixture(t)
	_, err := f.composer(nil).Compose(context.Background(), Request{TotalCount: 0})
	assert.True(t, errors.Is(err, vocab.ErrInvalidCount))
	assert.Empty(t, f.gen.calls)
}

func TestCompose_GenerationFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"generator error", &fakeGenerator{err: errors.New("boom")}},
		{"under-delivery", &fakeGenerator{short: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, "c", "t", 3)
			f.gen = tt.gen
			before, _ := f.kv.Get(context.Background(), "mastery/records")

			_, err := f.composer(review.HeuristicRecommender{}).Compose(context.Background(), Request{
				Category: "c", Topic: "t", TotalCount: 6,
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, vocab.ErrGenerationFailed))
			assert.Len(t, tt.gen.calls, 1, "no retry")

			after, _ := f.kv.Get(context.Background(), "mastery/records")
			assert.Equal(t, before, after)
		})
	}
}

func TestCompose_RecommenderFallback(t *testing.T) {
	unavailable := fixedRecommender{err: errors.New("rate limited")}

	t.Run("first", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "c", "t", 9)

		comp, err := f.composer(unavailable).Compose(context.Background(), Request{Category: "c", Topic: "t", TotalCount: 20})
		require.NoError(t, err)
		assert.Equal(t, []string{"r1", "r2", "r3", "r4", "r5", "r6"}, recordIDs(comp.Review))
		assert.Equal(t, 14, f.gen.calls[0].Count)
	})

	t.Run("fail", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "c", "t", 9)

		_, err := f.composer(unavailable, WithReviewFallback(FallbackFail)).Compose(context.Background(), Request{Category: "c", Topic: "t", TotalCount: 20})
		require.Error(t, err)
		assert.True(t, errors.Is(err, vocab.ErrGeneratorUnavailable))
		assert.Empty(t, f.gen.calls)
	})
}

func openFocus(t *testing.T, kv store.KV) *focus.Manager {
	t.Helper()
	m, err := focus.Open(context.Background(), kv, focus.WithClock(func() time.Time {
		return time.Date(2026, 8, 2, 18, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return m
}

func TestCompose_FocusReuseSkipsGenerator(t *testing.T) {
	f := newFixture(t)
	fm := openFocus(t, f.kv)
	ctx := context.Background()

	a := vocab.WordPair{SourceWord: "quai", TargetWord: "platform"}
	b := vocab.WordPair{SourceWord: "guichet", TargetWord: "ticket office"}
	_, err := fm.SetCurrentFocus(ctx, "train station")
	require.NoError(t, err)
	_, err = fm.AddWordsToCurrentFocus(ctx, []vocab.WordPair{a, b})
	require.NoError(t, err)

	comp, err := f.composer(nil, WithFocus(fm)).Compose(ctx, Request{Category: "ignored", Topic: "ignored", TotalCount: 10})
	require.NoError(t, err)

	assert.Equal(t, []vocab.WordPair{a, b}, comp.Words)
	assert.True(t, comp.Reused)
	assert.Equal(t, "train station", comp.Instruction)
	assert.Empty(t, f.gen.calls)

	s, _ := fm.Current()
	require.NotNil(t, s.LastUsed)
}

func TestCompose_FocusFirstBatchIsGeneratedAndAppended(t *testing.T) {
	f := newFixture(t)
	fm := openFocus(t, f.kv)
	ctx := context.Background()

	_, _ = fm.SetCurrentFocus(ctx, "train station")
	_, _ = fm.AddWordsToCurrentFocus(ctx, []vocab.WordPair{{SourceWord: "quai", TargetWord: "platform"}})
	require.NoError(t, fm.ClearCurrentFocus(ctx))
	_, _ = fm.SetCurrentFocus(ctx, "Train Station")

	f.seed(t, "vocabulary", "Travail", 4)
	comp, err := f.composer(nil, WithFocus(fm)).Compose(ctx, Request{
		Category: "vocabulary", Topic: "Travail", TotalCount: 4, Exclude: []string{"gare"},
	})
	require.NoError(t, err)

	require.Len(t, f.gen.calls, 1)
	call := f.gen.calls[0]
	assert.Equal(t, "Train Station", call.Topic)
	assert.Empty(t, call.Category)
	assert.Equal(t, 4, call.Count)
	assert.Equal(t, []string{"quai", "gare"}, call.Exclude)
	assert.Empty(t, comp.Review, "focus mode bypasses review")

	words, err := fm.GetCurrentFocusWords()
	require.NoError(t, err)
	assert.Equal(t, comp.Words, words)
}

func TestCompose_FocusFailureLeavesFocusUnchanged(t *testing.T) {
	f := newFixture(t)
	fm := openFocus(t, f.kv)
	ctx := context.Background()
	_, _ = fm.SetCurrentFocus(ctx, "museum")
	f.gen.err = errors.New("offline")

	_, err := f.composer(nil, WithFocus(fm)).Compose(ctx, Request{TotalCount: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, vocab.ErrGenerationFailed))

	s, ok := fm.Current()
	require.True(t, ok)
	assert.Empty(t, s.Words)
	assert.Nil(t, s.LastUsed)
}

// countingKV counts writes per key and fails every write after failAfter
// writes, when failAfter is positive.
type countingKV struct {
	store.KV
	sets      map[string]int
	total     int
	failAfter int
}

func (k *countingKV) Set(ctx context.Context, key string, value []byte) error {
	k.total++
	if k.failAfter > 0 && k.total > k.failAfter {
		return &store.StorageError{Op: "set", Key: key, Err: errors.New("disk full")}
	}
	k.sets[key]++
	return k.KV.Set(ctx, key, value)
}

func TestCompose_FocusBatchIsOneWrite(t *testing.T) {
	f := newFixture(t)
	kv := &countingKV{KV: f.kv, sets: map[string]int{}}
	fm := openFocus(t, kv)
	ctx := context.Background()
	_, _ = fm.SetCurrentFocus(ctx, "museum")
	kv.sets = map[string]int{}

	_, err := f.composer(nil, WithFocus(fm)).Compose(ctx, Request{TotalCount: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, kv.sets["focus/current"], "words and last-used stamp are saved together")

	s, _ := openFocus(t, f.kv).Current()
	assert.Len(t, s.Words, 3)
	assert.NotNil(t, s.LastUsed)
}

func TestCompose_FocusWriteFailureLeavesFocusUnchanged(t *testing.T) {
	f := newFixture(t)
	kv := &countingKV{KV: f.kv, sets: map[string]int{}}
	fm := openFocus(t, kv)
	ctx := context.Background()
	_, _ = fm.SetCurrentFocus(ctx, "museum")
	kv.failAfter = kv.total

	_, err := f.composer(nil, WithFocus(fm)).Compose(ctx, Request{TotalCount: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrStorage))

	for _, m := range []*focus.Manager{fm, openFocus(t, f.kv)} {
		s, ok := m.Current()
		require.True(t, ok)
		assert.Empty(t, s.Words)
		assert.Nil(t, s.LastUsed)
	}
}
