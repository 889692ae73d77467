package commands

import (
	"fmt"

	"github.com/RylynnLai/trading-tips/internal/analysiscfg"
	"github.com/RylynnLai/trading-tips/internal/indicator"
	"github.com/RylynnLai/trading-tips/internal/signal"
	"github.com/RylynnLai/trading-tips/internal/strategy"
	"github.com/RylynnLai/trading-tips/internal/trend"
	"github.com/RylynnLai/trading-tips/pkg/config"
	"github.com/RylynnLai/trading-tips/pkg/logger"
)

// buildAnalyzer loads the analysis profile and wires the pipeline
// components from it.
// ⭐ SSOT: analyzer construction for the CLI happens here only
func buildAnalyzer(cfg *config.Config, log *logger.Logger) (*strategy.Analyzer, *analysiscfg.Config, error) {
	profile, _, err := analysiscfg.LoadOrDefault(cfg.AnalysisConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load analysis profile: %w", err)
	}

	for _, warning := range analysiscfg.Warn(profile) {
		log.WithFields(map[string]interface{}{
			"code":    warning.Code,
			"message": warning.Message,
		}).Warn("Analysis profile warning")
	}

	analyzer := strategy.NewAnalyzer(
		indicator.NewEngine(profile.IndicatorConfig()),
		trend.NewClassifier(profile.TrendConfig()),
		signal.NewDetector(profile.SignalConfig()),
		strategy.NewScorer(profile.ScoringConfig()),
		profile.ScoringConfig(),
		log,
	)

	return analyzer, profile, nil
}
