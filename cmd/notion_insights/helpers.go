package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/config"
	"github.com/jonathan/notion-insights/internal/db"
	"github.com/jonathan/notion-insights/internal/llm"
	"github.com/jonathan/notion-insights/internal/notion"
	"github.com/jonathan/notion-insights/internal/ratelimit"
)

// resolveConfig builds the effective configuration for a command:
// config file values, overridden by explicitly set flags, backfilled from
// environment variables and defaults, then validated.
func resolveConfig(cmd *cobra.Command, configPath string, applyFlags func(cfg *config.Config)) (*config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if cmd.Flags().Changed("verbose") || cfg.Verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", configPath)
		}
	}

	if applyFlags != nil {
		applyFlags(&cfg)
	}
	cfg.ApplyEnv()
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// openDB connects to PostgreSQL using the configured URL.
func openDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required (--db-url or DATABASE_URL)")
	}
	return db.Connect(ctx, cfg.DatabaseURL)
}

// newNotionClient builds the extraction provider from the configured
// credentials.
func newNotionClient(cfg *config.Config) (*notion.Client, error) {
	return notion.NewClient(cfg.NotionToken, cfg.NotionDatabaseID)
}

// newLLMClient builds the Gemini client.
func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is required (--api-key or GEMINI_API_KEY)")
	}
	return llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
}

// newLimiter builds the shared outbound rate limiter.
func newLimiter(cfg *config.Config) *ratelimit.Limiter {
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return ratelimit.New(cfg.RequestsPerSecond, burst)
}
