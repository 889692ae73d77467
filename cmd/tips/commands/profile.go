package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RylynnLai/trading-tips/internal/analysiscfg"
	"github.com/RylynnLai/trading-tips/pkg/config"
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect the analysis profile",
	Long: `Validates and inspects the YAML analysis profile.

Subcommands:
  show      - print the active profile and its hash
  validate  - validate a profile file

Example:
  go run ./cmd/tips profile show
  go run ./cmd/tips profile validate configs/aggressive.yaml`,
}

var (
	profileShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the active profile and its hash",
		RunE:  showProfile,
	}

	profileValidateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a profile file",
		Args:  cobra.ExactArgs(1),
		RunE:  validateProfile,
	}
)

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileValidateCmd)
}

func showProfile(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	profile, _, err := analysiscfg.LoadOrDefault(cfg.AnalysisConfigPath)
	if err != nil {
		return err
	}

	hash, err := analysiscfg.Hash(profile)
	if err != nil {
		return fmt.Errorf("hash profile: %w", err)
	}

	source := cfg.AnalysisConfigPath
	if source == "" {
		source = "(built-in defaults)"
	}

	fmt.Printf("Profile:  %s (version %s)\n", profile.Meta.ProfileID, profile.Meta.Version)
	fmt.Printf("Source:   %s\n", source)
	fmt.Printf("Hash:     %s\n", hash)
	fmt.Printf("Windows:  %v\n", profile.Indicators.Windows)
	fmt.Printf("MinScore: %d\n", profile.Scoring.MinScore)

	printWarnings(profile)
	return nil
}

func validateProfile(cmd *cobra.Command, args []string) error {
	profile, _, err := analysiscfg.Load(args[0])
	if err != nil {
		return err
	}

	hash, err := analysiscfg.Hash(profile)
	if err != nil {
		return fmt.Errorf("hash profile: %w", err)
	}

	fmt.Printf("✅ %s is valid (profile %s, hash %s)\n", args[0], profile.Meta.ProfileID, hash[:12])
	printWarnings(profile)
	return nil
}

func printWarnings(profile *analysiscfg.Config) {
	warnings := analysiscfg.Warn(profile)
	if len(warnings) == 0 {
		return
	}
	fmt.Println("\nWarnings:")
	for _, w := range warnings {
		fmt.Printf("  [%s] %s\n", w.Code, w.Message)
	}
}
