package strategy

import (
	"fmt"
	"math"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

// profile holds the per-strategy outlook baseline: the expected gain
// ladder, the historical base success rate, and the holding horizon in
// trading days.
type profile struct {
	gains      [3]float64
	baseRate   float64
	holding    [3]int // min, target, stretch
	maxHolding int
}

var profiles = map[contracts.Strategy]profile{
	contracts.StrategyBreakout: {
		gains: [3]float64{10, 25, 50}, baseRate: 0.65,
		holding: [3]int{5, 20, 60}, maxHolding: 90,
	},
	contracts.StrategyPullback: {
		gains: [3]float64{8, 18, 35}, baseRate: 0.75,
		holding: [3]int{10, 30, 90}, maxHolding: 180,
	},
	contracts.StrategyHoldAccelerate: {
		gains: [3]float64{15, 35, 70}, baseRate: 0.45,
		holding: [3]int{3, 10, 20}, maxHolding: 30,
	},
}

// Probability decay down the target ladder, and the success-rate
// clamp bounds.
const (
	secondTargetDecay = 0.65
	thirdTargetDecay  = 0.35
	minSuccessRate    = 0.10
	maxSuccessRate    = 0.95
	exitBiasThreshold = 0.30
)

// Predictor attaches a profit/exit outlook to a recommendation.
// Pure heuristics over the analysis results, no market data access.
type Predictor struct{}

// NewPredictor creates a predictor.
func NewPredictor() *Predictor {
	return &Predictor{}
}

// Predict builds the outlook for one scored strategy. volatility is the
// latest ATR relative to price; targets blend the structural levels with
// the strategy's typical gain ladder.
func (p *Predictor) Predict(strategy contracts.Strategy, trend *contracts.TrendInfo, signals *contracts.SignalSet, volatility float64) *contracts.Prediction {
	prof, ok := profiles[strategy]
	if !ok {
		prof = profiles[contracts.StrategyPullback]
	}

	return &contracts.Prediction{
		Targets:     p.targets(prof, trend, volatility, strategy),
		Holding:     p.holding(prof, trend),
		SuccessRate: p.successRate(prof, trend, signals),
		ExitChecks:  p.exitChecks(trend, signals),
	}
}

// targets blends each structural level with the strategy's typical gain
// for that rung, then nudges the result by volatility: a fast mover
// gets more room, a sleeper less.
func (p *Predictor) targets(prof profile, trend *contracts.TrendInfo, volatility float64, strategy contracts.Strategy) []contracts.PredictedTarget {
	price := trend.CurrentPrice
	if price <= 0 {
		return nil
	}

	decay := [3]float64{1, secondTargetDecay, thirdTargetDecay}
	out := make([]contracts.PredictedTarget, 0, len(prof.gains))
	for i, gain := range prof.gains {
		target := price * (1 + gain/100)
		if i < len(trend.Targets) {
			target = (trend.Targets[i].Price + target) / 2
		}
		switch {
		case volatility > 0.03:
			target *= 1.1
		case volatility > 0 && volatility < 0.015:
			target *= 0.9
		}
		out = append(out, contracts.PredictedTarget{
			Level:       i + 1,
			Price:       target,
			GainPct:     (target - price) / price * 100,
			Probability: prof.baseRate * decay[i],
		})
	}
	return out
}

// holding scales the strategy's horizon by trend strength: the further
// the trend has developed, the longer it can be ridden.
func (p *Predictor) holding(prof profile, trend *contracts.TrendInfo) contracts.HoldingPeriod {
	multiplier := 0.8 + 0.4*trendStrength(trend)
	return contracts.HoldingPeriod{
		MinDays:    int(float64(prof.holding[0]) * multiplier),
		TargetDays: int(float64(prof.holding[1]) * multiplier),
		MaxDays:    int(float64(prof.maxHolding) * multiplier),
	}
}

// successRate adjusts the strategy's base rate by the quality of the
// current setup, clamped to a sane band.
func (p *Predictor) successRate(prof profile, trend *contracts.TrendInfo, signals *contracts.SignalSet) float64 {
	rate := prof.baseRate

	if trend.Density < 0.02 {
		rate += 0.10 // a very tight base breaks out harder
	}
	if trend.Alignment == contracts.AlignBull {
		rate += 0.05
	}
	switch strength := trendStrength(trend); {
	case strength > 0.7:
		rate += 0.08
	case strength < 0.3:
		rate -= 0.10
	}
	if signals.Breakout.VolumeConfirmed {
		rate += 0.05
	}

	return math.Min(maxSuccessRate, math.Max(minSuccessRate, rate))
}

// exitChecks enumerates the exit conditions with their current state so
// a holder knows what already fired.
func (p *Predictor) exitChecks(trend *contracts.TrendInfo, signals *contracts.SignalSet) []contracts.ExitCheck {
	bearishStop := trend.Alignment == contracts.AlignBear
	stopBreached := trend.CurrentPrice < trend.StopLoss.Price
	if bearishStop {
		stopBreached = trend.CurrentPrice > trend.StopLoss.Price
	}

	shortest := -1
	for w := range trend.Turning {
		if shortest < 0 || w < shortest {
			shortest = w
		}
	}
	turningDown := shortest > 0 && trend.Turning[shortest].CanTurnDown

	bias := longestBias(trend)

	return []contracts.ExitCheck{
		{
			Name:      "stop_loss",
			Condition: fmt.Sprintf("close beyond %.2f (%s)", trend.StopLoss.Price, trend.StopLoss.Basis),
			Triggered: stopBreached,
		},
		{
			Name:      "short_average_turning",
			Condition: fmt.Sprintf("close below the MA%d discount price", shortest),
			Triggered: turningDown,
		},
		{
			Name:      "top_structure",
			Condition: "double top completed",
			Triggered: signals.Structure.DoubleTop.Found,
		},
		{
			Name:      "extreme_deviation",
			Condition: fmt.Sprintf("long-window deviation beyond %.0f%%", exitBiasThreshold*100),
			Triggered: math.Abs(bias) > exitBiasThreshold,
		},
	}
}

// trendStrength maps the phase onto a [0,1] scale used by the holding
// and success heuristics.
func trendStrength(trend *contracts.TrendInfo) float64 {
	switch trend.Phase {
	case contracts.PhaseExtreme:
		return 0.9
	case contracts.PhaseDevelop:
		return 0.7
	case contracts.PhaseStart:
		return 0.5
	case contracts.PhaseTurning:
		return 0.3
	default:
		return 0.5
	}
}
