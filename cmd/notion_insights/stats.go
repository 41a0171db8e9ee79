package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/config"
)

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Show pipeline progress counts",
	RunE:  runStatsCmd,
}

var (
	statsConfigPath  string
	statsDatabaseURL string
)

func init() {
	statsCommand.Flags().StringVar(&statsConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	statsCommand.Flags().StringVar(&statsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(statsCommand)
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, statsConfigPath, func(cfg *config.Config) {
		if cmd.Flags().Changed("db-url") {
			cfg.DatabaseURL = statsDatabaseURL
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

	stats, err := database.GetStats(ctx, cfg.MaxAttempts)
	if err != nil {
		return err
	}

	fmt.Printf("Documents:         %d\n", stats.TotalDocuments)
	fmt.Printf("Classify pending:  %d\n", stats.ClassifyPending)
	fmt.Printf("Classify done:     %d\n", stats.ClassifyDone)
	fmt.Printf("Classify failed:   %d (%d exhausted)\n", stats.ClassifyFailed, stats.ClassifyExhausted)
	fmt.Printf("Summarize pending: %d\n", stats.SummarizePending)
	fmt.Printf("Summarize done:    %d\n", stats.SummarizeDone)
	fmt.Printf("Summarize failed:  %d\n", stats.SummarizeFailed)
	fmt.Printf("Weekly summaries:  %d\n", stats.WeeklySummaryCount)
	return nil
}
