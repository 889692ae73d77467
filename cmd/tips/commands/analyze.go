package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RylynnLai/trading-tips/internal/notify"
	"github.com/RylynnLai/trading-tips/internal/pipeline"
	"github.com/RylynnLai/trading-tips/internal/report"
	"github.com/RylynnLai/trading-tips/internal/store"
	"github.com/RylynnLai/trading-tips/internal/strategy"
	"github.com/RylynnLai/trading-tips/pkg/config"
	"github.com/RylynnLai/trading-tips/pkg/database"
	"github.com/RylynnLai/trading-tips/pkg/httputil"
	"github.com/RylynnLai/trading-tips/pkg/logger"
	"github.com/RylynnLai/trading-tips/pkg/redis"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the analysis pipeline once",
	Long: `Runs the full analysis pipeline: loads the universe from the
database, classifies trends, detects signals, scores strategies and
prints the ranked recommendations.

By default the result is persisted and the webhook digest is sent.
Use --dry-run to print without side effects.

Example:
  go run ./cmd/tips analyze
  go run ./cmd/tips analyze --symbol 005930
  go run ./cmd/tips analyze --dry-run --markdown`,
	RunE: runAnalyze,
}

var (
	analyzeSymbol   string
	analyzeDryRun   bool
	analyzeMarkdown bool
	analyzeLookback int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeSymbol, "symbol", "", "analyze a single symbol instead of the universe")
	analyzeCmd.Flags().BoolVar(&analyzeDryRun, "dry-run", false, "skip persistence and webhook delivery")
	analyzeCmd.Flags().BoolVar(&analyzeMarkdown, "markdown", false, "print the markdown digest instead of the summary")
	analyzeCmd.Flags().IntVar(&analyzeLookback, "lookback", 0, "bars to load per symbol (default from pipeline config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	analyzer, _, err := buildAnalyzer(cfg, log)
	if err != nil {
		return err
	}

	priceRepo := store.NewPriceRepository(db.Pool)
	runCfg := pipeline.DefaultConfig()
	if analyzeLookback > 0 {
		runCfg.Lookback = analyzeLookback
	}

	if analyzeSymbol != "" {
		return analyzeOne(ctx, priceRepo, analyzer, runCfg.Lookback)
	}

	var sink pipeline.ResultSink
	var notifier pipeline.Notifier
	var cache *redis.Cache

	if !analyzeDryRun {
		sink = store.NewRecommendationRepository(db.Pool)

		redisClient, err := redis.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		cache = redis.NewCache(redisClient, "tips")

		httpClient := httputil.New(cfg, log).
			WithRateLimiter(redis.NewRateLimiter(redisClient, "tips"), redis.WebhookRateLimit)
		notifier = notify.New(cfg, httpClient, log)
	}

	runner := pipeline.NewRunner(priceRepo, sink, analyzer, cache, notifier, runCfg, log)
	result, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("analysis run: %w", err)
	}

	if analyzeMarkdown {
		fmt.Println(report.Markdown(result))
	} else {
		fmt.Println(report.Summary(result))
	}
	return nil
}

func analyzeOne(ctx context.Context, priceRepo *store.PriceRepository, analyzer *strategy.Analyzer, lookback int) error {
	bars, err := priceRepo.GetBars(ctx, analyzeSymbol, lookback)
	if err != nil {
		return fmt.Errorf("load bars for %s: %w", analyzeSymbol, err)
	}
	if len(bars) == 0 {
		fmt.Fprintf(os.Stderr, "no price history for %s\n", analyzeSymbol)
		return fmt.Errorf("no price history for %s", analyzeSymbol)
	}

	rec, detail, err := analyzer.AnalyzeSymbol(analyzeSymbol, bars)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", analyzeSymbol, err)
	}

	fmt.Printf("=== %s ===\n", analyzeSymbol)
	fmt.Printf("Trend:     %s (%s, %s)\n", detail.Trend.TrendType, detail.Trend.Phase, detail.Trend.Alignment)
	fmt.Printf("Density:   %.4f\n", detail.Trend.Density)
	fmt.Printf("Slope:     %.4f\n", detail.Trend.Slope)

	if rec == nil {
		fmt.Println("No strategy cleared the minimum score.")
		return nil
	}

	fmt.Printf("Strategy:  %s (score %d)\n", rec.Strategy, rec.Score)
	for _, reason := range rec.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
	for _, t := range rec.Targets {
		fmt.Printf("Target %d:  %.2f (+%.1f%%)\n", t.Level, t.Price, t.GainPct)
	}
	fmt.Printf("Stop loss: %.2f (%s)\n", rec.StopLoss.Price, rec.StopLoss.Basis)
	return nil
}
