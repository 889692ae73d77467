package analysiscfg

import (
	"fmt"
)

// ValidationError is a fatal profile violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a recommended-range violation, reported but not fatal.
type Warning struct {
	Code    string
	Message string
}

// Validate checks every hard constraint of the profile. The pipeline
// components assume a validated config and do not re-check.
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}

	// === Indicators ===
	ind := cfg.Indicators
	if len(ind.Windows) == 0 {
		return ValidationError{"indicators.windows", "must not be empty"}
	}
	for i, w := range ind.Windows {
		if w < 2 {
			return ValidationError{
				Field:   fmt.Sprintf("indicators.windows[%d]", i),
				Message: "must be >= 2",
			}
		}
		if i > 0 && w <= ind.Windows[i-1] {
			return ValidationError{"indicators.windows", "must be strictly ascending"}
		}
	}
	if ind.SlopeLookback < 1 {
		return ValidationError{"indicators.slope_lookback", "must be >= 1"}
	}
	if ind.AnnualDays < 1 {
		return ValidationError{"indicators.annual_days", "must be >= 1"}
	}
	if ind.ATRWindow < 1 {
		return ValidationError{"indicators.atr_window", "must be >= 1"}
	}
	if ind.VolumeWindow < 1 {
		return ValidationError{"indicators.volume_window", "must be >= 1"}
	}

	// === Trend ===
	tr := cfg.Trend
	if err := validateRatio(tr.DenseThreshold, "trend.dense_threshold"); err != nil {
		return err
	}
	if tr.StableMin <= 0 {
		return ValidationError{"trend.stable_min", "must be > 0"}
	}
	if tr.StableMin >= tr.StableMax {
		return ValidationError{"trend", "stable_min must be < stable_max"}
	}
	if tr.StableMax > tr.AccelerateThreshold {
		return ValidationError{"trend", "stable_max must be <= accelerate_threshold"}
	}
	if tr.MinZoneBars < 1 {
		return ValidationError{"trend.min_zone_bars", "must be >= 1"}
	}
	if tr.MinPhaseSamples < 2 {
		return ValidationError{"trend.min_phase_samples", "must be >= 2"}
	}
	if tr.PhaseLookback < tr.MinPhaseSamples {
		return ValidationError{"trend.phase_lookback", "must be >= min_phase_samples"}
	}
	if err := validateRatio(tr.StopLossPct, "trend.stop_loss_pct"); err != nil {
		return err
	}
	if tr.MaxTargets < 1 {
		return ValidationError{"trend.max_targets", "must be >= 1"}
	}
	if tr.ATRMultiple <= 0 {
		return ValidationError{"trend.atr_multiple", "must be > 0"}
	}

	// === Signals ===
	sig := cfg.Signals
	if err := validateRatio(sig.DenseThreshold, "signals.dense_threshold"); err != nil {
		return err
	}
	if sig.DenseLookback < 1 {
		return ValidationError{"signals.dense_lookback", "must be >= 1"}
	}
	if sig.AlignWindow < 1 {
		return ValidationError{"signals.align_window", "must be >= 1"}
	}
	if sig.VolumeMultiple <= 1 {
		return ValidationError{"signals.volume_multiple", "must be > 1"}
	}
	if err := validateRatio(sig.PullbackBand, "signals.pullback_band"); err != nil {
		return err
	}
	if err := validateRatio(sig.Prominence, "signals.prominence"); err != nil {
		return err
	}
	if sig.Separation < 1 {
		return ValidationError{"signals.separation", "must be >= 1"}
	}
	if sig.ReversalLookback < 1 {
		return ValidationError{"signals.reversal_lookback", "must be >= 1"}
	}
	if sig.RecoveryWindow < 1 {
		return ValidationError{"signals.recovery_window", "must be >= 1"}
	}
	if err := validateRatio(sig.ReversalTol, "signals.reversal_tol"); err != nil {
		return err
	}
	if sig.StructureLookback < 1 {
		return ValidationError{"signals.structure_lookback", "must be >= 1"}
	}
	if err := validateRatio(sig.StructureTolerance, "signals.structure_tolerance"); err != nil {
		return err
	}
	if sig.MinStructureBars < 1 {
		return ValidationError{"signals.min_structure_bars", "must be >= 1"}
	}

	// === Scoring ===
	sc := cfg.Scoring
	if sc.MinScore < 0 || sc.MinScore > 100 {
		return ValidationError{"scoring.min_score", "must be in [0, 100]"}
	}
	if sc.MaxRecommendations < 1 {
		return ValidationError{"scoring.max_recommendations", "must be >= 1"}
	}
	if sc.RiskRewardTarget <= 0 {
		return ValidationError{"scoring.risk_reward_target", "must be > 0"}
	}
	if sc.ExtremeBias <= 0 || sc.ExtremeBias > 1 {
		return ValidationError{"scoring.extreme_bias", "must be in (0, 1]"}
	}
	if sc.HoldBaseScore < 0 || sc.HoldBaseScore > 100 {
		return ValidationError{"scoring.hold_base_score", "must be in [0, 100]"}
	}
	if sc.Workers < 1 {
		return ValidationError{"scoring.workers", "must be >= 1"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal).
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Trend.DenseThreshold != cfg.Signals.DenseThreshold {
		warnings = append(warnings, Warning{
			Code: "DIVERGENT_DENSE",
			Message: fmt.Sprintf("trend and signal dense thresholds differ (%.3f vs %.3f): regime and breakout will disagree on consolidation",
				cfg.Trend.DenseThreshold, cfg.Signals.DenseThreshold),
		})
	}

	if cfg.Trend.MinZoneBars < 60 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_ZONE",
			Message: "min_zone_bars < 60: short consolidations will generate weak target levels",
		})
	}

	if cfg.Scoring.MinScore < 50 {
		warnings = append(warnings, Warning{
			Code:    "LOW_MIN_SCORE",
			Message: "min_score < 50: marginal setups will surface as recommendations",
		})
	}

	if cfg.Scoring.Workers > 64 {
		warnings = append(warnings, Warning{
			Code:    "MANY_WORKERS",
			Message: "workers > 64: the pipeline is CPU-bound, extra workers only add scheduling overhead",
		})
	}

	return warnings
}

// validateRatio checks a fraction lies in (0, 1).
func validateRatio(v float64, field string) error {
	if v <= 0 || v >= 1 {
		return ValidationError{field, "must be in (0, 1)"}
	}
	return nil
}
