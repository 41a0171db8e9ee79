package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"notion_token": "secret",
		"notion_database_id": "db-1",
		"classify_batch_size": 25,
		"confidence_threshold": 0.7,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.NotionToken)
	assert.Equal(t, "db-1", cfg.NotionDatabaseID)
	assert.Equal(t, 25, cfg.ClassifyBatchSize)
	assert.InDelta(t, 0.7, cfg.ConfidenceThreshold, 1e-9)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeConfigFile(t, `{not json`)
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "env-token")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg := Config{NotionToken: "file-token"}
	cfg.ApplyEnv()

	assert.Equal(t, "file-token", cfg.NotionToken, "file value wins over env")
	assert.Equal(t, "env-key", cfg.GeminiAPIKey)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{ClassifyBatchSize: 5, NotionToken: "tok"}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 5, merged.ClassifyBatchSize, "explicit value wins")
	assert.Equal(t, "tok", merged.NotionToken)
	assert.Equal(t, 100, merged.ExtractPageSize)
	assert.Equal(t, 4, merged.ClassifyWorkers)
	assert.Equal(t, 3, merged.MaxAttempts)
	assert.Equal(t, 4000, merged.MaxContentChars)
	assert.InDelta(t, 0.5, merged.ConfidenceThreshold, 1e-9)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())

	cfg.ConfidenceThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.ClassifyWorkers = 64
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.ExtractPageSize = 101
	assert.Error(t, cfg.Validate())
}
