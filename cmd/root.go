package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiz/internal/app"
	"github.com/abhisek/lexiz/internal/config"
	"github.com/abhisek/lexiz/internal/logger"
	"github.com/abhisek/lexiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lexiz",
	Short: "Adaptive vocabulary sessions",
	Long: "lexiz builds vocabulary sessions that mix words you are learning with\n" +
		"freshly generated ones, and tracks how well you know each word.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LEXIZ_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(dictCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(directionCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the db.path setting, then LEXIZ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}

// loadConfig reads the config and installs the configured logger on stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	return cfg, nil
}

// openApp loads the config and opens every service over the database.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	return app.Open(cmd.Context(), cfg, dbPath, nil)
}

// openStore opens only the database, for commands that read LLM events.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
