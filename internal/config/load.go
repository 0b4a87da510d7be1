package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/lexiz/internal/llm"
	"github.com/abhisek/lexiz/internal/session"
	"github.com/abhisek/lexiz/internal/vocab"
)

// EnvPrefix is prepended to every environment variable lexiz reads.
const EnvPrefix = "LEXIZ"

// Load builds a Config. path names an explicit YAML file; when empty the
// file is looked up as config.yaml in the user config directory and is
// optional. A .env file in the working directory is loaded first and never
// overrides variables already set in the process environment.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readFile(v, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if d, err := vocab.ParseDirection(cfg.Learning.Direction); err == nil {
		cfg.Learning.Direction = string(d)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if cfg.LLM.Provider == "" {
		cfg.LLM, cfg.LLMDiscovered = llm.DiscoverConfig(cfg.LLM)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads the given env files, ignoring ones that do not exist.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func readFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "lexiz"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal, including keys whose default is empty.
func setDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()

	v.SetDefault("db.path", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", llmDefaults.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", llmDefaults.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", llmDefaults.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", llmDefaults.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", llmDefaults.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", llmDefaults.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", llmDefaults.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", llmDefaults.Retry.Multiplier)
	v.SetDefault("llm.timeout", llmDefaults.Timeout)

	v.SetDefault("learning.source_language", "French")
	v.SetDefault("learning.target_language", "English")
	v.SetDefault("learning.direction", string(vocab.DefaultDirection))

	v.SetDefault("session.total_count", 10)
	v.SetDefault("session.review_fallback", session.FallbackFirst)

	v.SetDefault("focus.history_limit", 200)
}
