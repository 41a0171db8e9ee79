package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/notion-insights/internal/config"
)

func TestAllCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"extract", "classify", "summarize", "run", "stats", "reset", "setup"} {
		assert.True(t, names[want], "command %q must be registered", want)
	}
}

func TestResolveConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"notion_token": "file-token",
		"classify_batch_size": 7
	}`), 0o644))
	t.Setenv("NOTION_TOKEN", "env-token")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cmd := &cobra.Command{}
	cmd.Flags().String("verbose", "", "")

	cfg, err := resolveConfig(cmd, path, func(cfg *config.Config) {
		cfg.ClassifyBatchSize = 3 // explicit flag override
	})
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.ClassifyBatchSize, "flag beats config file")
	assert.Equal(t, "file-token", cfg.NotionToken, "config file beats env")
	assert.Equal(t, "env-key", cfg.GeminiAPIKey, "env fills missing values")
	assert.Equal(t, 4, cfg.ClassifyWorkers, "defaults fill the rest")
}

func TestResolveConfig_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"confidence_threshold": 2.0}`), 0o644))

	cmd := &cobra.Command{}
	cmd.Flags().String("verbose", "", "")

	_, err := resolveConfig(cmd, path, nil)
	assert.Error(t, err)
}

func TestNewLimiter_MinimumBurst(t *testing.T) {
	cfg := config.Defaults()
	cfg.RequestsPerSecond = 0.5

	limiter := newLimiter(&cfg)
	assert.NotNil(t, limiter)
}
