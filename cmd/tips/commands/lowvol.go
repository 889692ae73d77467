package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/RylynnLai/trading-tips/internal/lowvol"
	"github.com/RylynnLai/trading-tips/internal/store"
	"github.com/RylynnLai/trading-tips/pkg/config"
	"github.com/RylynnLai/trading-tips/pkg/database"
	"github.com/RylynnLai/trading-tips/pkg/logger"
)

// lowvolCmd represents the lowvol command
var lowvolCmd = &cobra.Command{
	Use:   "lowvol",
	Short: "Run the low-volatility rotation screen",
	Long: `Screens the universe for low-volatility names with positive
momentum and prints the ranked rotation with position sizing.

This runs beside the trend pipeline and produces its own list.

Example:
  go run ./cmd/tips lowvol
  go run ./cmd/tips lowvol --top 5 --json`,
	RunE: runLowvol,
}

var (
	lowvolTop      int
	lowvolLookback int
	lowvolJSON     bool
)

func init() {
	rootCmd.AddCommand(lowvolCmd)

	lowvolCmd.Flags().IntVar(&lowvolTop, "top", 0, "positions in the rotation (default from screen config)")
	lowvolCmd.Flags().IntVar(&lowvolLookback, "lookback", 120, "bars to load per symbol")
	lowvolCmd.Flags().BoolVar(&lowvolJSON, "json", false, "print the full result as JSON")
}

func runLowvol(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	screenCfg := lowvol.DefaultConfig()
	if lowvolTop > 0 {
		screenCfg.TopN = lowvolTop
	}

	priceRepo := store.NewPriceRepository(db.Pool)
	symbols, err := priceRepo.ListSymbols(ctx, screenCfg.VolatilityWindow)
	if err != nil {
		return fmt.Errorf("list universe: %w", err)
	}
	universe, err := priceRepo.GetUniverseBars(ctx, symbols, lowvolLookback)
	if err != nil {
		return fmt.Errorf("load universe bars: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"symbols": len(universe),
		"top_n":   screenCfg.TopN,
	}).Info("Running low-volatility rotation screen")

	result := lowvol.NewScreener(screenCfg).Screen(universe)

	if lowvolJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printLowvolResult(result)
	return nil
}

func printLowvolResult(result *lowvol.Result) {
	fmt.Println("=== Low-Volatility Rotation ===")
	if len(result.Recommendations) == 0 {
		fmt.Println("No symbol cleared the screen.")
	}
	for _, rec := range result.Recommendations {
		sharpe := "n/a"
		if !math.IsNaN(rec.Sharpe) {
			sharpe = fmt.Sprintf("%.2f", rec.Sharpe)
		}
		fmt.Printf("%d. %-8s score=%.3f vol=%.1f%% mom=%+.1f%% sharpe=%s pos=%.0f%% stop=%.2f\n",
			rec.Rank, rec.Symbol, rec.Score, rec.Volatility, rec.Momentum, sharpe, rec.PositionPct, rec.StopLoss)
		for _, reason := range rec.Reasons {
			fmt.Printf("   - %s\n", reason)
		}
	}

	if result.Stats.Positions > 0 {
		fmt.Printf("📊 Portfolio: %d positions, avg vol %.1f%%, avg momentum %+.1f%%, expected annual %+.1f%%\n",
			result.Stats.Positions, result.Stats.AvgVolatility, result.Stats.AvgMomentum, result.Stats.ExpectedAnnualPct)
	}
	if len(result.Skipped) > 0 {
		fmt.Printf("Skipped %d symbols with insufficient or malformed history.\n", len(result.Skipped))
	}
}
