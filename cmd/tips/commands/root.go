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
	Use:   "tips",
	Short: "trading-tips - daily trend classification and signal scoring",
	Long: `trading-tips Unified CLI

Classifies daily price trends, detects entry signals and scores
candidate strategies into a ranked recommendation list.

Usage:
  go run ./cmd/tips [command]

Examples:
  go run ./cmd/tips analyze
  go run ./cmd/tips analyze --symbol 005930
  go run ./cmd/tips api
  go run ./cmd/tips scheduler start`,
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
