package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/classify"
	"github.com/jonathan/notion-insights/internal/config"
	"github.com/jonathan/notion-insights/internal/extract"
	"github.com/jonathan/notion-insights/internal/pipeline"
	"github.com/jonathan/notion-insights/internal/summary"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline end-to-end: extract -> classify -> summarize",
	Long: `Orchestrates the whole pipeline: extracts documents from Notion,
classifies the backlog in batches, and builds the weekly summary.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath   string
	runToken        string
	runNotionDB     string
	runAPIKey       string
	runDatabaseURL  string
	runExtractLimit int
	runWeek         string
	runVerbose      bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	runCommand.Flags().StringVar(&runToken, "notion-token", "", "Notion integration token (optional, defaults to NOTION_TOKEN env var)")
	runCommand.Flags().StringVar(&runNotionDB, "notion-db", "", "Notion database ID (optional, defaults to NOTION_DATABASE_ID env var)")
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runCommand.Flags().IntVarP(&runExtractLimit, "limit", "l", 0, "Maximum documents to extract (0 = no limit)")
	runCommand.Flags().StringVarP(&runWeek, "week", "w", "", "Target ISO week as YYYY-Wnn (default: current week)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, runConfigPath, func(cfg *config.Config) {
		if cmd.Flags().Changed("notion-token") {
			cfg.NotionToken = runToken
		}
		if cmd.Flags().Changed("notion-db") {
			cfg.NotionDatabaseID = runNotionDB
		}
		if cmd.Flags().Changed("api-key") {
			cfg.GeminiAPIKey = runAPIKey
		}
		if cmd.Flags().Changed("db-url") {
			cfg.DatabaseURL = runDatabaseURL
		}
		if cmd.Flags().Changed("verbose") {
			cfg.Verbose = runVerbose
		}
	})
	if err != nil {
		return err
	}

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	provider, err := newNotionClient(cfg)
	if err != nil {
		return err
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	limiter := newLimiter(cfg)
	extractor := extract.NewCoordinator(provider, database, limiter, cfg.ExtractPageSize)
	classifier := classify.NewOrchestrator(database, client, limiter, classify.Options{
		BatchSize:           cfg.ClassifyBatchSize,
		Workers:             cfg.ClassifyWorkers,
		MaxAttempts:         cfg.MaxAttempts,
		MaxContentChars:     cfg.MaxContentChars,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	})
	summarizer := summary.NewEngine(database, client, limiter, cfg.MaxAttempts)

	_, err = pipeline.RunAll(ctx, extractor, classifier, summarizer, pipeline.RunOptions{
		ExtractLimit: runExtractLimit,
		WeekID:       runWeek,
		Verbose:      cfg.Verbose,
	})
	return err
}
