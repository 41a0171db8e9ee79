// Package main provides the entry point for the Notion insights pipeline CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notion_insights",
	Short: "Notion workspace document insights pipeline",
	Long:  "Notion insights extracts documents from a Notion workspace, classifies them with Gemini, and aggregates weekly activity summaries with mindset indicators.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
