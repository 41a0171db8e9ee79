// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, environment
// variables, or must be provided via CLI flags.
type Config struct {
	// Credentials
	NotionToken      string `json:"notion_token,omitempty"`       // Notion integration token
	NotionDatabaseID string `json:"notion_database_id,omitempty"` // Notion database to extract from
	GeminiAPIKey     string `json:"gemini_api_key,omitempty"`     // Gemini API key
	DatabaseURL      string `json:"database_url,omitempty"`       // PostgreSQL connection URL

	// Limits
	ExtractPageSize     int     `json:"extract_page_size,omitempty" validate:"gte=0,lte=100"` // Notion query page size
	ClassifyBatchSize   int     `json:"classify_batch_size,omitempty" validate:"gte=0"`       // Documents claimed per classification batch
	ClassifyWorkers     int     `json:"classify_workers,omitempty" validate:"gte=0,lte=16"`   // Concurrent classification calls
	MaxAttempts         int     `json:"max_attempts,omitempty" validate:"gte=0"`              // Attempts before a stage is exhausted
	MaxContentChars     int     `json:"max_content_chars,omitempty" validate:"gte=0"`         // Content ceiling sent to the model
	ConfidenceThreshold float64 `json:"confidence_threshold,omitempty" validate:"gte=0,lte=1"`

	// Behavior
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" validate:"gte=0"` // Outbound API rate limit
	Verbose           bool    `json:"verbose,omitempty"`                              // Print detailed debug information
}

// Defaults returns the built-in configuration values
func Defaults() Config {
	return Config{
		ExtractPageSize:     100,
		ClassifyBatchSize:   10,
		ClassifyWorkers:     4,
		MaxAttempts:         3,
		MaxContentChars:     4000,
		ConfidenceThreshold: 0.5,
		RequestsPerSecond:   3,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv fills empty credential fields from the environment
func (c *Config) ApplyEnv() {
	if c.NotionToken == "" {
		c.NotionToken = os.Getenv("NOTION_TOKEN")
	}
	if c.NotionDatabaseID == "" {
		c.NotionDatabaseID = os.Getenv("NOTION_DATABASE_ID")
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required credentials since those are
// handled per-command after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: %q fails %q constraint", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. This is used to apply config file values as defaults
// for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.NotionToken == "" {
		result.NotionToken = defaults.NotionToken
	}
	if result.NotionDatabaseID == "" {
		result.NotionDatabaseID = defaults.NotionDatabaseID
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Numeric fields: use default if zero
	if result.ExtractPageSize == 0 {
		result.ExtractPageSize = defaults.ExtractPageSize
	}
	if result.ClassifyBatchSize == 0 {
		result.ClassifyBatchSize = defaults.ClassifyBatchSize
	}
	if result.ClassifyWorkers == 0 {
		result.ClassifyWorkers = defaults.ClassifyWorkers
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.MaxContentChars == 0 {
		result.MaxContentChars = defaults.MaxContentChars
	}
	if result.ConfidenceThreshold == 0 {
		result.ConfidenceThreshold = defaults.ConfidenceThreshold
	}
	if result.RequestsPerSecond == 0 {
		result.RequestsPerSecond = defaults.RequestsPerSecond
	}

	// Bool fields: true wins
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}
