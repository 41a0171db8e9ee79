package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/config"
	"github.com/jonathan/notion-insights/internal/summary"
)

var summarizeCommand = &cobra.Command{
	Use:   "summarize",
	Short: "Build the weekly summary and mindset indicators",
	Long: `Aggregates the classified documents of one ISO week (Monday 00:00 UTC
through the following Monday), computes category counts and mindset
indicators, and generates a narrative summary with Gemini. Re-running a
week overwrites its summary.`,
	RunE: runSummarizeCmd,
}

var (
	summarizeConfigPath  string
	summarizeAPIKey      string
	summarizeDatabaseURL string
	summarizeWeek        string
	summarizeVerbose     bool
)

func init() {
	summarizeCommand.Flags().StringVar(&summarizeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	summarizeCommand.Flags().StringVar(&summarizeAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	summarizeCommand.Flags().StringVar(&summarizeDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	summarizeCommand.Flags().StringVarP(&summarizeWeek, "week", "w", "", "Target ISO week as YYYY-Wnn (default: current week)")
	summarizeCommand.Flags().BoolVarP(&summarizeVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(summarizeCommand)
}

func runSummarizeCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, summarizeConfigPath, func(cfg *config.Config) {
		if cmd.Flags().Changed("api-key") {
			cfg.GeminiAPIKey = summarizeAPIKey
		}
		if cmd.Flags().Changed("db-url") {
			cfg.DatabaseURL = summarizeDatabaseURL
		}
		if cmd.Flags().Changed("verbose") {
			cfg.Verbose = summarizeVerbose
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

	engine := summary.NewEngine(database, client, newLimiter(cfg), cfg.MaxAttempts)
	result, err := engine.Run(ctx, summarizeWeek)
	if err != nil {
		return err
	}

	if result.Summary == nil {
		fmt.Printf("No classified documents in %s, nothing to summarize\n", result.WeekID)
		return nil
	}

	s := result.Summary
	fmt.Printf("Week %s: %d documents\n", s.WeekID, result.Documents)
	fmt.Printf("Categories: %v\n", s.CategoryCounts)
	fmt.Printf("Mindset indicators:\n")
	for _, name := range []string{
		summary.IndicatorLearningFocus,
		summary.IndicatorProjectOrientation,
		summary.IndicatorResearchOrientation,
		summary.IndicatorKnowledgeSharing,
	} {
		fmt.Printf("  %-22s %.2f\n", name, s.MindsetIndicators[name])
	}
	fmt.Printf("\n%s\n", s.SummaryText)
	if len(s.KeyInsights) > 0 {
		fmt.Printf("\nKey insights:\n- %s\n", strings.Join(s.KeyInsights, "\n- "))
	}
	return nil
}
