package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/lexiz/internal/llm"
)

const rankSystemPrompt = `You are a language tutor planning a short review.

Rules:
- From the candidate words, choose exactly 6 for the learner to review now.
- Prefer words with a low mastery level and words not reviewed for a long time.
- Avoid picking only the words reviewed most recently.
- Return the chosen ids, most important first. Use only ids from the list.`

// RankSchema is the response schema for review ranking.
var RankSchema = &llm.Schema{
	Name:        "review-rank",
	Description: "Ids of the words to review, most important first",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ids": map[string]any{
				"type":     "array",
				"minItems": PickCount,
				"maxItems": PickCount,
				"items":    map[string]any{"type": "string"},
			},
		},
		"required":             []any{"ids"},
		"additionalProperties": false,
	},
}

// LLMRecommender ranks candidates with an LLM provider.
type LLMRecommender struct {
	provider    llm.Provider
	maxTokens   int
	temperature float64
}

// NewLLMRecommender creates an LLMRecommender.
func NewLLMRecommender(provider llm.Provider) *LLMRecommender {
	return &LLMRecommender{provider: provider, maxTokens: 256, temperature: 0.2}
}

type rankOutput struct {
	IDs []string `json:"ids"`
}

func (r *LLMRecommender) Rank(ctx context.Context, candidates []Candidate) ([]string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeReviewRank)

	list, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("encode candidates: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Candidates (%d):\n", len(candidates))
	b.Write(list)

	resp, err := r.provider.Generate(ctx, llm.UserRequest(rankSystemPrompt, b.String(), RankSchema, r.maxTokens, r.temperature))
	if err != nil {
		return nil, fmt.Errorf("rank review words: %w", err)
	}

	var out rankOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse ranking: %w", err)
	}
	return out.IDs, nil
}
