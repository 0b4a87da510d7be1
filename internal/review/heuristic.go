package review

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// HeuristicRecommender ranks without an LLM. When there are more than
// PickCount candidates the single most stale one is set aside, then the
// rest are ordered by ascending mastery level, oldest review and id.
type HeuristicRecommender struct{}

func (HeuristicRecommender) Rank(_ context.Context, candidates []Candidate) ([]string, error) {
	if len(candidates) < PickCount {
		return nil, fmt.Errorf("need at least %d candidates, got %d", PickCount, len(candidates))
	}

	ranked := slices.Clone(candidates)
	if len(ranked) > PickCount {
		stalest := 0
		for i := range ranked {
			if olderThan(ranked[i], ranked[stalest]) {
				stalest = i
			}
		}
		ranked = slices.Delete(ranked, stalest, stalest+1)
	}

	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		if a.MasteryLevel != b.MasteryLevel {
			return a.MasteryLevel - b.MasteryLevel
		}
		if c := reviewedAt(a).Compare(reviewedAt(b)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	ids := make([]string, PickCount)
	for i := range ids {
		ids[i] = ranked[i].ID
	}
	return ids, nil
}

func olderThan(a, b Candidate) bool {
	if c := reviewedAt(a).Compare(reviewedAt(b)); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// reviewedAt parses LastReviewed; unparseable values sort first.
func reviewedAt(c Candidate) time.Time {
	t, err := time.Parse(time.RFC3339, c.LastReviewed)
	if err != nil {
		return time.Time{}
	}
	return t
}
