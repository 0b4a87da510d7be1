// Package app wires the stores and services behind the lexiz commands.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/lexiz/internal/config"
	"github.com/abhisek/lexiz/internal/dictionary"
	"github.com/abhisek/lexiz/internal/focus"
	"github.com/abhisek/lexiz/internal/llm"
	"github.com/abhisek/lexiz/internal/logger"
	"github.com/abhisek/lexiz/internal/mastery"
	"github.com/abhisek/lexiz/internal/preferences"
	"github.com/abhisek/lexiz/internal/review"
	"github.com/abhisek/lexiz/internal/session"
	"github.com/abhisek/lexiz/internal/store"
	"github.com/abhisek/lexiz/internal/vocab"
	"github.com/abhisek/lexiz/internal/wordgen"
)

// App holds the services built over one store.
type App struct {
	Config     *config.Config
	Store      *store.Store
	Mastery    *mastery.Store
	Dictionary *dictionary.Store
	Focus      *focus.Manager
	Directions *preferences.DirectionStore
	Sessions   *session.Service

	// Provider is nil when no LLM is configured.
	Provider llm.Provider

	logger *slog.Logger
}

// Open opens the database at dbPath and builds every service from cfg.
func Open(ctx context.Context, cfg *config.Config, dbPath string, l *slog.Logger) (*App, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a, err := New(ctx, cfg, st, l)
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

// New builds the services over an open store.
func New(ctx context.Context, cfg *config.Config, st *store.Store, l *slog.Logger) (*App, error) {
	l = logger.OrDefault(l)
	kv := st.KV()

	a := &App{
		Config:     cfg,
		Store:      st,
		Mastery:    mastery.NewStore(kv, mastery.WithLogger(l)),
		Dictionary: dictionary.NewStore(kv, dictionary.WithLogger(l)),
		logger:     l,
	}

	var err error
	a.Focus, err = focus.Open(ctx, kv, focus.WithHistoryLimit(cfg.Focus.HistoryLimit), focus.WithLogger(l))
	if err != nil {
		return nil, err
	}
	a.Directions, err = preferences.OpenDirectionStore(ctx, kv, vocab.Direction(cfg.Learning.Direction))
	if err != nil {
		return nil, err
	}

	var (
		recommender review.Recommender = review.HeuristicRecommender{}
		generator   wordgen.Generator  = noGenerator{}
	)
	if cfg.LLM.Provider != "" {
		a.Provider, err = llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), l)
		if err != nil {
			return nil, fmt.Errorf("configure LLM provider: %w", err)
		}
		if cfg.LLMDiscovered {
			l.Info("using LLM provider discovered from environment", "provider", cfg.LLM.Provider)
		}
		recommender = review.NewLLMRecommender(a.Provider)

		genCfg := wordgen.DefaultConfig()
		genCfg.SourceLanguage = cfg.Learning.SourceLanguage
		genCfg.TargetLanguage = cfg.Learning.TargetLanguage
		generator = wordgen.New(a.Provider, genCfg)
	} else {
		l.Info("no LLM provider configured; new words cannot be generated")
	}

	composer := session.NewComposer(
		review.NewSelector(a.Mastery, recommender),
		generator,
		session.WithFocus(a.Focus),
		session.WithReviewFallback(cfg.Session.ReviewFallback),
		session.WithLogger(l),
	)
	a.Sessions = session.NewService(composer, session.NewStateStore(kv, l), a.Mastery, a.Directions)
	return a, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// noGenerator stands in for the word generator when no LLM is configured.
type noGenerator struct{}

func (noGenerator) Generate(context.Context, wordgen.Request) ([]vocab.WordPair, error) {
	return nil, fmt.Errorf("%w: no LLM provider configured", vocab.ErrGenerationFailed)
}
