// Package analysiscfg holds the YAML-tunable parameterization of the
// analysis pipeline and validates it before any component runs.
package analysiscfg

import (
	"time"

	"github.com/RylynnLai/trading-tips/internal/indicator"
	"github.com/RylynnLai/trading-tips/internal/signal"
	"github.com/RylynnLai/trading-tips/internal/strategy"
	"github.com/RylynnLai/trading-tips/internal/trend"
)

// Config is the full analysis profile.
// ⭐ SSOT: every tunable threshold of the pipeline lives here; the
// component packages only carry their sections as plain structs.
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Indicators Indicators `yaml:"indicators" json:"indicators"`
	Trend      Trend      `yaml:"trend" json:"trend"`
	Signals    Signals    `yaml:"signals" json:"signals"`
	Scoring    Scoring    `yaml:"scoring" json:"scoring"`
}

// Meta identifies the profile for audit and reproducibility.
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Indicators parameterizes the derived-series engine.
type Indicators struct {
	Windows       []int `yaml:"windows" json:"windows"`
	SlopeLookback int   `yaml:"slope_lookback" json:"slope_lookback"`
	AnnualDays    int   `yaml:"annual_days" json:"annual_days"`
	ATRWindow     int   `yaml:"atr_window" json:"atr_window"`
	VolumeWindow  int   `yaml:"volume_window" json:"volume_window"`
}

// Trend parameterizes the regime classifier and level derivation.
type Trend struct {
	DenseThreshold      float64 `yaml:"dense_threshold" json:"dense_threshold"`
	StableMin           float64 `yaml:"stable_min" json:"stable_min"`
	StableMax           float64 `yaml:"stable_max" json:"stable_max"`
	AccelerateThreshold float64 `yaml:"accelerate_threshold" json:"accelerate_threshold"`
	MinZoneBars         int     `yaml:"min_zone_bars" json:"min_zone_bars"`
	PhaseLookback       int     `yaml:"phase_lookback" json:"phase_lookback"`
	MinPhaseSamples     int     `yaml:"min_phase_samples" json:"min_phase_samples"`
	StopLossPct         float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	MaxTargets          int     `yaml:"max_targets" json:"max_targets"`
	ATRMultiple         float64 `yaml:"atr_multiple" json:"atr_multiple"`
}

// Signals parameterizes the event detector.
type Signals struct {
	DenseThreshold float64 `yaml:"dense_threshold" json:"dense_threshold"`
	DenseLookback  int     `yaml:"dense_lookback" json:"dense_lookback"`
	AlignWindow    int     `yaml:"align_window" json:"align_window"`
	VolumeMultiple float64 `yaml:"volume_multiple" json:"volume_multiple"`

	PullbackBand float64 `yaml:"pullback_band" json:"pullback_band"`

	Prominence       float64 `yaml:"prominence" json:"prominence"`
	Separation       int     `yaml:"separation" json:"separation"`
	ReversalLookback int     `yaml:"reversal_lookback" json:"reversal_lookback"`
	RecoveryWindow   int     `yaml:"recovery_window" json:"recovery_window"`
	ReversalTol      float64 `yaml:"reversal_tol" json:"reversal_tol"`

	StructureLookback  int     `yaml:"structure_lookback" json:"structure_lookback"`
	StructureTolerance float64 `yaml:"structure_tolerance" json:"structure_tolerance"`
	MinStructureBars   int     `yaml:"min_structure_bars" json:"min_structure_bars"`
}

// Scoring parameterizes the strategy scorer and batch run.
type Scoring struct {
	MinScore           int     `yaml:"min_score" json:"min_score"`
	MaxRecommendations int     `yaml:"max_recommendations" json:"max_recommendations"`
	RiskRewardTarget   float64 `yaml:"risk_reward_target" json:"risk_reward_target"`
	ExtremeBias        float64 `yaml:"extreme_bias" json:"extreme_bias"`
	HoldBaseScore      int     `yaml:"hold_base_score" json:"hold_base_score"`
	Workers            int     `yaml:"workers" json:"workers"`
}

// Default returns the reference profile, assembled from the component
// defaults so there is exactly one place each number is written.
func Default() *Config {
	ind := indicator.DefaultConfig()
	tr := trend.DefaultConfig()
	sig := signal.DefaultConfig()
	sc := strategy.DefaultConfig()

	return &Config{
		Meta: Meta{
			ProfileID: "daily_trend_v1",
			Version:   "1.0.0",
		},
		Indicators: Indicators{
			Windows:       ind.Windows,
			SlopeLookback: ind.SlopeLookback,
			AnnualDays:    ind.AnnualDays,
			ATRWindow:     ind.ATRWindow,
			VolumeWindow:  ind.VolumeWindow,
		},
		Trend: Trend{
			DenseThreshold:      tr.DenseThreshold,
			StableMin:           tr.StableMin,
			StableMax:           tr.StableMax,
			AccelerateThreshold: tr.AccelerateThreshold,
			MinZoneBars:         tr.MinZoneBars,
			PhaseLookback:       tr.PhaseLookback,
			MinPhaseSamples:     tr.MinPhaseSamples,
			StopLossPct:         tr.StopLossPct,
			MaxTargets:          tr.MaxTargets,
			ATRMultiple:         tr.ATRMultiple,
		},
		Signals: Signals{
			DenseThreshold:     sig.DenseThreshold,
			DenseLookback:      sig.DenseLookback,
			AlignWindow:        sig.AlignWindow,
			VolumeMultiple:     sig.VolumeMultiple,
			PullbackBand:       sig.PullbackBand,
			Prominence:         sig.Prominence,
			Separation:         sig.Separation,
			ReversalLookback:   sig.ReversalLookback,
			RecoveryWindow:     sig.RecoveryWindow,
			ReversalTol:        sig.ReversalTol,
			StructureLookback:  sig.StructureLookback,
			StructureTolerance: sig.StructureTolerance,
			MinStructureBars:   sig.MinStructureBars,
		},
		Scoring: Scoring{
			MinScore:           sc.MinScore,
			MaxRecommendations: sc.MaxRecommendations,
			RiskRewardTarget:   sc.RiskRewardTarget,
			ExtremeBias:        sc.ExtremeBias,
			HoldBaseScore:      sc.HoldBaseScore,
			Workers:            sc.Workers,
		},
	}
}

// IndicatorConfig maps the profile onto the engine's parameters.
func (c *Config) IndicatorConfig() indicator.Config {
	return indicator.Config{
		Windows:       c.Indicators.Windows,
		SlopeLookback: c.Indicators.SlopeLookback,
		AnnualDays:    c.Indicators.AnnualDays,
		ATRWindow:     c.Indicators.ATRWindow,
		VolumeWindow:  c.Indicators.VolumeWindow,
	}
}

// TrendConfig maps the profile onto the classifier's thresholds.
func (c *Config) TrendConfig() trend.Config {
	return trend.Config{
		DenseThreshold:      c.Trend.DenseThreshold,
		StableMin:           c.Trend.StableMin,
		StableMax:           c.Trend.StableMax,
		AccelerateThreshold: c.Trend.AccelerateThreshold,
		MinZoneBars:         c.Trend.MinZoneBars,
		PhaseLookback:       c.Trend.PhaseLookback,
		MinPhaseSamples:     c.Trend.MinPhaseSamples,
		StopLossPct:         c.Trend.StopLossPct,
		MaxTargets:          c.Trend.MaxTargets,
		ATRMultiple:         c.Trend.ATRMultiple,
	}
}

// SignalConfig maps the profile onto the detector's tolerances.
func (c *Config) SignalConfig() signal.Config {
	return signal.Config{
		DenseThreshold:     c.Signals.DenseThreshold,
		DenseLookback:      c.Signals.DenseLookback,
		AlignWindow:        c.Signals.AlignWindow,
		VolumeMultiple:     c.Signals.VolumeMultiple,
		PullbackBand:       c.Signals.PullbackBand,
		Prominence:         c.Signals.Prominence,
		Separation:         c.Signals.Separation,
		ReversalLookback:   c.Signals.ReversalLookback,
		RecoveryWindow:     c.Signals.RecoveryWindow,
		ReversalTol:        c.Signals.ReversalTol,
		StructureLookback:  c.Signals.StructureLookback,
		StructureTolerance: c.Signals.StructureTolerance,
		MinStructureBars:   c.Signals.MinStructureBars,
	}
}

// ScoringConfig maps the profile onto the scorer and batch parameters.
func (c *Config) ScoringConfig() strategy.Config {
	return strategy.Config{
		MinScore:           c.Scoring.MinScore,
		MaxRecommendations: c.Scoring.MaxRecommendations,
		RiskRewardTarget:   c.Scoring.RiskRewardTarget,
		ExtremeBias:        c.Scoring.ExtremeBias,
		HoldBaseScore:      c.Scoring.HoldBaseScore,
		Workers:            c.Scoring.Workers,
	}
}

// ProfileSnapshot records what configuration produced a batch, for
// reproducing a run after the profile file changes.
type ProfileSnapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	ProfileID  string    `json:"profile_id"`
	CreatedAt  time.Time `json:"created_at"`
}
