package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/config"
	"github.com/jonathan/notion-insights/internal/extract"
)

var extractCommand = &cobra.Command{
	Use:   "extract",
	Short: "Extract documents from the Notion workspace into local storage",
	Long: `Walks the configured Notion database with cursor pagination and mirrors
every document into PostgreSQL with idempotent bookkeeping. Re-running
refreshes existing documents without creating duplicates.`,
	RunE: runExtractCmd,
}

var (
	extractConfigPath  string
	extractToken       string
	extractDatabaseID  string
	extractDatabaseURL string
	extractLimit       int
	extractVerbose     bool
)

func init() {
	extractCommand.Flags().StringVar(&extractConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	extractCommand.Flags().StringVar(&extractToken, "notion-token", "", "Notion integration token (optional, defaults to NOTION_TOKEN env var)")
	extractCommand.Flags().StringVar(&extractDatabaseID, "notion-db", "", "Notion database ID (optional, defaults to NOTION_DATABASE_ID env var)")
	extractCommand.Flags().StringVar(&extractDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	extractCommand.Flags().IntVarP(&extractLimit, "limit", "l", 0, "Maximum documents to extract (0 = no limit)")
	extractCommand.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(extractCommand)
}

func runExtractCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, extractConfigPath, func(cfg *config.Config) {
		if cmd.Flags().Changed("notion-token") {
			cfg.NotionToken = extractToken
		}
		if cmd.Flags().Changed("notion-db") {
			cfg.NotionDatabaseID = extractDatabaseID
		}
		if cmd.Flags().Changed("db-url") {
			cfg.DatabaseURL = extractDatabaseURL
		}
		if cmd.Flags().Changed("verbose") {
			cfg.Verbose = extractVerbose
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

	coordinator := extract.NewCoordinator(provider, database, newLimiter(cfg), cfg.ExtractPageSize)
	result, err := coordinator.Run(ctx, extractLimit)
	if result != nil {
		fmt.Printf("Extracted %d new, %d updated documents (%d pages)\n",
			result.Created, result.Updated, result.Pages)
	}
	return err
}
