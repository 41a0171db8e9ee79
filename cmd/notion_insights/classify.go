package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/classify"
	"github.com/jonathan/notion-insights/internal/config"
)

var classifyCommand = &cobra.Command{
	Use:   "classify",
	Short: "Classify extracted documents with Gemini",
	Long: `Claims one batch of extracted documents and classifies each into the
project/knowledge taxonomy. Low-confidence or malformed model responses
fall back to knowledge/documentation; transport errors leave the document
retryable. Use --all to keep claiming batches until the backlog is empty.`,
	RunE: runClassifyCmd,
}

var (
	classifyConfigPath  string
	classifyAPIKey      string
	classifyDatabaseURL string
	classifyBatchSize   int
	classifyAll         bool
	classifyVerbose     bool
)

func init() {
	classifyCommand.Flags().StringVar(&classifyConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	classifyCommand.Flags().StringVar(&classifyAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	classifyCommand.Flags().StringVar(&classifyDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	classifyCommand.Flags().IntVarP(&classifyBatchSize, "batch", "b", 0, "Documents to claim per batch (default 10)")
	classifyCommand.Flags().BoolVar(&classifyAll, "all", false, "Process batches until no eligible documents remain")
	classifyCommand.Flags().BoolVarP(&classifyVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(classifyCommand)
}

func runClassifyCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, classifyConfigPath, func(cfg *config.Config) {
		if cmd.Flags().Changed("api-key") {
			cfg.GeminiAPIKey = classifyAPIKey
		}
		if cmd.Flags().Changed("db-url") {
			cfg.DatabaseURL = classifyDatabaseURL
		}
		if cmd.Flags().Changed("batch") {
			cfg.ClassifyBatchSize = classifyBatchSize
		}
		if cmd.Flags().Changed("verbose") {
			cfg.Verbose = classifyVerbose
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

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	orchestrator := classify.NewOrchestrator(database, client, newLimiter(cfg), classify.Options{
		BatchSize:           cfg.ClassifyBatchSize,
		Workers:             cfg.ClassifyWorkers,
		MaxAttempts:         cfg.MaxAttempts,
		MaxContentChars:     cfg.MaxContentChars,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	})

	total := classify.Result{}
	for {
		result, err := orchestrator.Run(ctx)
		if err != nil {
			return err
		}
		total.Classified += result.Classified
		total.Fallback += result.Fallback
		total.Failed += result.Failed

		processed := result.Classified + result.Fallback + result.Failed
		if cfg.Verbose && processed > 0 {
			fmt.Printf("[VERBOSE] Batch: %d classified, %d fallback, %d failed\n",
				result.Classified, result.Fallback, result.Failed)
		}
		if !classifyAll || processed == 0 {
			break
		}
	}

	fmt.Printf("Classified %d documents (%d fallback, %d failed)\n",
		total.Classified, total.Fallback, total.Failed)
	return nil
}
