// Package trend classifies a security's trend regime from its indicator
// frame: regime type, phase, moving-average turning projections, dense
// zones, and the derived target/stop levels.
package trend

import (
	"fmt"
	"math"

	"github.com/RylynnLai/trading-tips/internal/contracts"
	"github.com/RylynnLai/trading-tips/internal/indicator"
)

// Config holds the classifier thresholds. Slope thresholds are
// annualized fractions (0.15 = 15%/yr).
type Config struct {
	DenseThreshold      float64 // density below this is consolidation
	StableMin           float64 // lower bound for a stable trend slope
	StableMax           float64 // upper bound for a stable trend slope
	AccelerateThreshold float64 // slope beyond this is acceleration
	MinZoneBars         int     // minimum dense-run length for a zone
	PhaseLookback       int     // bars of slope history for the phase
	MinPhaseSamples     int     // defined slopes required for a phase call
	StopLossPct         float64 // fixed stop distance from entry
	MaxTargets          int     // target levels emitted, top to bottom
	ATRMultiple         float64 // ATR step between synthetic targets
}

// DefaultConfig returns the standard daily-bar thresholds.
func DefaultConfig() Config {
	return Config{
		DenseThreshold:      0.05,
		StableMin:           0.15,
		StableMax:           0.80,
		AccelerateThreshold: 0.80,
		MinZoneBars:         126,
		PhaseLookback:       60,
		MinPhaseSamples:     20,
		StopLossPct:         0.05,
		MaxTargets:          3,
		ATRMultiple:         2.0,
	}
}

// snapshot is the latest-bar state the rules predicate over.
type snapshot struct {
	density   float64
	slope     float64 // annualized, shortest window
	alignment contracts.Alignment
}

// rule is one (predicate, outcome) entry of the classification table.
type rule struct {
	name    string
	match   func(Config, snapshot) bool
	outcome contracts.TrendType
}

// rules is evaluated top to bottom, first match wins. The fallthrough
// row always matches, so classification is total.
var rules = []rule{
	{
		name: "dense",
		match: func(c Config, s snapshot) bool {
			return s.density < c.DenseThreshold
		},
		outcome: contracts.TrendDense,
	},
	{
		name: "stable_up",
		match: func(c Config, s snapshot) bool {
			return s.alignment == contracts.AlignBull &&
				s.slope >= c.StableMin && s.slope <= c.StableMax
		},
		outcome: contracts.TrendStableUp,
	},
	{
		name: "accelerate_up",
		match: func(c Config, s snapshot) bool {
			return s.alignment == contracts.AlignBull && s.slope > c.AccelerateThreshold
		},
		outcome: contracts.TrendAccelerateUp,
	},
	{
		name: "stable_down",
		match: func(c Config, s snapshot) bool {
			return s.alignment == contracts.AlignBear &&
				s.slope <= -c.StableMin && s.slope >= -c.StableMax
		},
		outcome: contracts.TrendStableDown,
	},
	{
		name: "accelerate_down",
		match: func(c Config, s snapshot) bool {
			return s.alignment == contracts.AlignBear && s.slope < -c.AccelerateThreshold
		},
		outcome: contracts.TrendAccelerateDown,
	},
	{
		name:    "mixed_no_trend",
		match:   func(Config, snapshot) bool { return true },
		outcome: contracts.TrendMixedNoTrend,
	},
}

// Classifier assigns trend regimes. Pure: same frame, same result.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a classifier. Thresholds are validated upstream
// by analysiscfg.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify evaluates the frame at its most recent bar and returns the
// full trend picture. Exactly one regime is assigned; a frame whose
// latest density or slope is still undefined fails with
// ErrInsufficientData rather than guessing.
func (c *Classifier) Classify(f *indicator.Frame) (*contracts.TrendInfo, error) {
	last := f.LastIndex()
	if last < 0 {
		return nil, fmt.Errorf("%w: empty frame", contracts.ErrInsufficientData)
	}

	density, okD := f.DensityAt(last)
	slope, okS := f.SlopeAt(f.Shortest(), last)
	if !okD || !okS {
		return nil, fmt.Errorf("%w: indicators undefined at latest bar for %s",
			contracts.ErrInsufficientData, f.Series.Symbol)
	}

	snap := snapshot{
		density:   density,
		slope:     slope,
		alignment: f.AlignmentAt(last),
	}

	info := &contracts.TrendInfo{
		Symbol:       f.Series.Symbol,
		Alignment:    snap.alignment,
		Density:      density,
		Slope:        slope,
		Bias:         make(map[int]float64, len(f.Windows)),
		Turning:      make(map[int]contracts.TurnPrediction, len(f.Windows)),
		CurrentPrice: f.Series.LastClose(),
	}

	for _, r := range rules {
		if r.match(c.cfg, snap) {
			info.TrendType = r.outcome
			break
		}
	}

	for _, w := range f.Windows {
		if b, ok := f.BiasAt(w, last); ok {
			info.Bias[w] = b
		}
		info.Turning[w] = c.turning(f, w, last)
	}

	info.Phase = c.phase(f, last)
	info.DenseZones = c.denseZones(f, last)
	info.Targets = c.targets(f, info.DenseZones, info.CurrentPrice, last)
	info.StopLoss = c.stopLoss(f, info.CurrentPrice, snap.alignment, last)

	return info, nil
}

// turning builds the one-step turning projection for one window. The
// moving average rises tomorrow iff tomorrow's close beats the discount
// price, so today's close against it is the best available forecast.
func (c *Classifier) turning(f *indicator.Frame, w, last int) contracts.TurnPrediction {
	price := f.Series.LastClose()
	p := contracts.TurnPrediction{Window: w, CurrentPrice: price}
	dp, ok := f.DiscountAt(w, last)
	if !ok {
		return p
	}
	p.DiscountPrice = dp
	p.CanTurnUp = price > dp
	p.CanTurnDown = price < dp
	return p
}

// phase locates the slope of the mid window inside its own recent
// distribution. A slope far outside the distribution means the trend
// is at an extreme; a slope near the mean means it is developing.
func (c *Classifier) phase(f *indicator.Frame, last int) contracts.TrendPhase {
	col := f.Slope[f.Mid()]
	window, ok := indicator.Trailing(col, last, c.cfg.PhaseLookback)
	if !ok {
		return contracts.PhaseUnknown
	}

	var sum float64
	var defined []float64
	for _, v := range window {
		if indicator.Defined(v) {
			defined = append(defined, v)
			sum += v
		}
	}
	if len(defined) < c.cfg.MinPhaseSamples {
		return contracts.PhaseUnknown
	}

	mean := sum / float64(len(defined))
	var sq float64
	for _, v := range defined {
		sq += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sq / float64(len(defined)-1))
	latest := defined[len(defined)-1]

	switch {
	case math.Abs(latest) > math.Abs(mean)+2*std:
		return contracts.PhaseExtreme
	case math.Abs(latest-mean) < std:
		return contracts.PhaseDevelop
	case math.Abs(latest) < math.Abs(mean):
		return contracts.PhaseStart
	default:
		return contracts.PhaseTurning
	}
}
