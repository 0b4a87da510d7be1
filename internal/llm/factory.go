package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/lexiz/internal/store"
)

// NewProvider builds the configured provider and wraps it with middleware:
// caller → timeout → retry → logging → base. The mock provider is returned
// bare so tests can inspect it.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return NewMockProvider(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, events, logger)
	p = WithRetry(p, cfg.Retry, logger)
	p = WithTimeout(p, cfg.Timeout)
	return p, nil
}
