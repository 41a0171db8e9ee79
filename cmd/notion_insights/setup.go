package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/config"
)

var setupCommand = &cobra.Command{
	Use:   "setup",
	Short: "Create the database schema",
	Long:  "Creates the pipeline tables if they do not exist. Safe to run repeatedly.",
	RunE:  runSetupCmd,
}

var (
	setupConfigPath  string
	setupDatabaseURL string
)

func init() {
	setupCommand.Flags().StringVar(&setupConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	setupCommand.Flags().StringVar(&setupDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(setupCommand)
}

func runSetupCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, setupConfigPath, func(cfg *config.Config) {
		if cmd.Flags().Changed("db-url") {
			cfg.DatabaseURL = setupDatabaseURL
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

	if err := database.Setup(ctx); err != nil {
		return err
	}
	fmt.Println("Database schema ready")
	return nil
}
