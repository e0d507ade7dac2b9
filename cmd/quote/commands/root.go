package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quote",
	Short: "Supplier quotation normalization and scoring engine",
	Long: `Quote Engine Unified CLI

Turns free-form supplier quotation documents into structured records,
normalizes costs into EUR, and ranks suppliers on a weighted composite
score with an optional model-written recommendation.

Usage:
  go run ./cmd/quote [command]

Examples:
  go run ./cmd/quote extract --docs ./quotes
  go run ./cmd/quote compare --docs ./quotes --narrative
  go run ./cmd/quote compare --records records.json
  go run ./cmd/quote api
  go run ./cmd/quote scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
