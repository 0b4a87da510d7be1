package wordgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/lexiz/internal/llm"
	"github.com/abhisek/lexiz/internal/vocab"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

type wordsOutput struct {
	Words []vocab.WordPair `json:"words"`
}

// Generate asks the provider for req.Count words plus some slack, then
// drops duplicates, excluded words and words already under review. It
// makes exactly one provider call.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) ([]vocab.WordPair, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("%w: %w", vocab.ErrGenerationFailed, vocab.ErrInvalidCount)
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeWordGen)

	ask := req.Count + min(g.config.Slack, req.Count)
	resp, err := g.provider.Generate(ctx, llm.UserRequest(
		systemPrompt,
		buildUserMessage(req, ask, g.config),
		WordsSchema,
		g.config.MaxTokens,
		g.config.Temperature,
	))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vocab.ErrGenerationFailed, err)
	}

	var out wordsOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("%w: parse response: %w", vocab.ErrGenerationFailed, err)
	}

	seen := make(map[string]bool, len(req.Exclude)+len(req.ContextWords))
	for _, w := range req.Exclude {
		seen[vocab.NormalizeWord(w)] = true
	}
	for _, p := range req.ContextWords {
		seen[p.Key()] = true
	}

	words := make([]vocab.WordPair, 0, len(out.Words))
	for _, p := range out.Words {
		p.SourceWord = strings.TrimSpace(p.SourceWord)
		p.TargetWord = strings.TrimSpace(p.TargetWord)
		p.Context = strings.TrimSpace(p.Context)
		if p.TargetWord == "" {
			continue
		}
		words = append(words, p)
	}
	words = vocab.Dedup(words, seen)

	if len(words) < req.Count {
		return nil, fmt.Errorf("%w: got %d usable words, want %d", vocab.ErrGenerationFailed, len(words), req.Count)
	}
	return words[:req.Count], nil
}
