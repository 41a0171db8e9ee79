package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/config"
)

var resetCommand = &cobra.Command{
	Use:   "reset [document-id]",
	Short: "Reset failed or stranded documents so they can be retried",
	Long: `Returns failed and in_progress stages to pending and zeroes their
attempt counters. With a document ID only that document is reset; without
one every failed or stranded document becomes retryable again. Do not run
this while a pipeline run is active.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResetCmd,
}

var (
	resetConfigPath  string
	resetDatabaseURL string
)

func init() {
	resetCommand.Flags().StringVar(&resetConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	resetCommand.Flags().StringVar(&resetDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(resetCommand)
}

func runResetCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, resetConfigPath, func(cfg *config.Config) {
		if cmd.Flags().Changed("db-url") {
			cfg.DatabaseURL = resetDatabaseURL
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

	documentID := ""
	if len(args) > 0 {
		documentID = args[0]
	}

	n, err := database.ResetFailed(ctx, documentID)
	if err != nil {
		return err
	}
	fmt.Printf("Reset %d failed record(s)\n", n)
	return nil
}
