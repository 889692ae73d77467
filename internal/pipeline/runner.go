// Package pipeline orchestrates a full analysis run: load the universe
// from storage, run the analyzer across it, persist the batch result,
// refresh the cache and push the digest to the webhook.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/RylynnLai/trading-tips/internal/contracts"
	"github.com/RylynnLai/trading-tips/internal/strategy"
	"github.com/RylynnLai/trading-tips/pkg/logger"
	"github.com/RylynnLai/trading-tips/pkg/redis"
)

// PriceSource supplies the bar series for a run.
type PriceSource interface {
	ListSymbols(ctx context.Context, minBars int) ([]string, error)
	GetUniverseBars(ctx context.Context, symbols []string, lookback int) (map[string][]contracts.Bar, error)
}

// ResultSink persists a finished batch result.
type ResultSink interface {
	SaveBatch(ctx context.Context, result *contracts.BatchResult) error
}

// Notifier pushes the digest after a successful run.
type Notifier interface {
	Enabled() bool
	SendBatchResult(ctx context.Context, result *contracts.BatchResult) error
}

// Config bounds how much history a run loads.
type Config struct {
	// Lookback is how many bars to load per symbol. The structure and
	// dense-zone scans want deep history, so this sits well above MinBars.
	Lookback int
	// MinBars filters the universe to symbols with enough history for
	// the longest moving average plus the slope lookback.
	MinBars int
}

// DefaultConfig returns the production run bounds.
func DefaultConfig() Config {
	return Config{
		Lookback: 420,
		MinBars:  140,
	}
}

// Runner executes analysis runs. Cache and notifier are optional; a nil
// value skips that step.
type Runner struct {
	prices   PriceSource
	sink     ResultSink
	analyzer *strategy.Analyzer
	cache    *redis.Cache
	notifier Notifier
	cfg      Config
	logger   *logger.Logger
}

// NewRunner wires a runner from its components.
func NewRunner(
	prices PriceSource,
	sink ResultSink,
	analyzer *strategy.Analyzer,
	cache *redis.Cache,
	notifier Notifier,
	cfg Config,
	log *logger.Logger,
) *Runner {
	return &Runner{
		prices:   prices,
		sink:     sink,
		analyzer: analyzer,
		cache:    cache,
		notifier: notifier,
		cfg:      cfg,
		logger:   log.WithField("module", "pipeline"),
	}
}

// Run executes one full analysis pass and returns the batch result.
// Persistence failure aborts the run; cache and webhook failures are
// logged and swallowed so a flaky sidecar never loses the result.
func (r *Runner) Run(ctx context.Context) (*contracts.BatchResult, error) {
	start := time.Now()

	symbols, err := r.prices.ListSymbols(ctx, r.cfg.MinBars)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	if len(symbols) == 0 {
		r.logger.Warn("No symbols with enough history, nothing to analyze")
		return &contracts.BatchResult{Date: time.Now().UTC().Truncate(24 * time.Hour)}, nil
	}

	series, err := r.prices.GetUniverseBars(ctx, symbols, r.cfg.Lookback)
	if err != nil {
		return nil, fmt.Errorf("failed to load bars: %w", err)
	}

	result := r.analyzer.AnalyzeBatch(ctx, series)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.sink != nil {
		if err := r.sink.SaveBatch(ctx, result); err != nil {
			return nil, fmt.Errorf("failed to persist batch result: %w", err)
		}
	}

	if r.cache != nil {
		key := redis.RecommendationsKey(result.Date.Format("2006-01-02"))
		if err := r.cache.Set(ctx, key, result, redis.TTLDaily); err != nil {
			r.logger.WithError(err).Warn("Failed to cache batch result")
		}
	}

	if r.notifier != nil && r.notifier.Enabled() {
		if err := r.notifier.SendBatchResult(ctx, result); err != nil {
			r.logger.WithError(err).Warn("Failed to deliver webhook digest")
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"symbols":         len(symbols),
		"recommendations": len(result.Recommendations),
		"skipped":         len(result.Skipped),
		"duration":        time.Since(start),
	}).Info("Analysis run completed")

	return result, nil
}
