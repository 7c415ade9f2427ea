// Package main implements batchctl, a command line client for running
// classroom batches from JSON files without the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"classroom-backend/internal/shared/config"
)

var rootCmd = &cobra.Command{
	Use:           "batchctl",
	Short:         "Run and export classroom batch generations",
	Long:          "batchctl renders prompts, runs batches through the configured provider and exports the results as text or .docx.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// cfg is loaded once before any command runs; config.Load also reads .env files.
var cfg config.Config

func init() {
	cobra.OnInitialize(func() { cfg = config.Load() })
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
