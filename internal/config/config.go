// Package config loads lexiz settings from defaults, an optional YAML
// file, a .env file and LEXIZ_* environment variables, in increasing
// order of precedence.
package config

import (
	"github.com/abhisek/lexiz/internal/llm"
)

// Config holds all application configuration.
type Config struct {
	DB       DBConfig       `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	LLM      llm.Config     `mapstructure:"llm"`
	Learning LearningConfig `mapstructure:"learning"`
	Session  SessionConfig  `mapstructure:"session"`
	Focus    FocusConfig    `mapstructure:"focus"`

	// LLMDiscovered is set when no provider was configured and one was
	// picked from the vendors' standard API key variables.
	LLMDiscovered bool `mapstructure:"-"`
}

// DBConfig locates the SQLite database. An empty Path means the
// platform default.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// LearningConfig describes the language pair being studied.
type LearningConfig struct {
	SourceLanguage string `mapstructure:"source_language" validate:"required"`
	TargetLanguage string `mapstructure:"target_language" validate:"required"`
	Direction      string `mapstructure:"direction" validate:"required,oneof=source_to_target target_to_source"`
}

// SessionConfig configures session composition. ReviewFallback takes
// session.FallbackFirst or session.FallbackFail.
type SessionConfig struct {
	TotalCount     int    `mapstructure:"total_count" validate:"gte=1,lte=100"`
	ReviewFallback string `mapstructure:"review_fallback" validate:"required,oneof=first fail"`
}

// FocusConfig configures focus mode.
type FocusConfig struct {
	// HistoryLimit caps the source words remembered per instruction.
	HistoryLimit int `mapstructure:"history_limit" validate:"gte=0"`
}
