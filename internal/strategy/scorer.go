// Package strategy converts trend and signal analysis into scored,
// ranked trade recommendations, and orchestrates the full pipeline
// across many symbols.
package strategy

import (
	"fmt"
	"sort"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

// Config holds the scorer parameters.
type Config struct {
	MinScore           int     // recommendations below this are dropped
	MaxRecommendations int     // batch result truncation
	RiskRewardTarget   float64 // ratio earning the full reward-risk points
	ExtremeBias        float64 // longest-window bias voiding a hold call
	HoldBaseScore      int     // fixed score of a clean accelerate-hold
	Workers            int     // batch worker pool size
}

// DefaultConfig returns the standard scoring parameters.
func DefaultConfig() Config {
	return Config{
		MinScore:           60,
		MaxRecommendations: 20,
		RiskRewardTarget:   3.0,
		ExtremeBias:        0.50,
		HoldBaseScore:      50,
		Workers:            8,
	}
}

// Point weights of the breakout strategy.
const (
	ptsBreakoutDense     = 30
	ptsBreakoutBull      = 25
	ptsBreakoutFresh     = 10
	ptsBreakoutAboveMA   = 15
	ptsBreakoutVolume    = 10
	ptsBreakoutRR        = 20
	ptsPullbackBull      = 20
	ptsPullbackBase      = 30 // shortest window; +10 per longer window
	ptsPullbackStep      = 10
	ptsPullbackFirst     = 15
	ptsPullbackSafe      = 10
	ptsPullbackStructure = 15
	maxScore             = 100
)

// Scorer evaluates candidate strategies for one security and keeps the
// best. Pure: no I/O, no state between calls.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer. Parameters are validated upstream by
// analysiscfg.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

type candidate struct {
	strategy contracts.Strategy
	score    int
	reasons  []string
	entry    string
	hold     string
}

// Score evaluates every candidate strategy and returns the best one as
// a recommendation, or nil when no strategy clears the minimum score.
// Equal scores fall back to strategy priority.
func (s *Scorer) Score(trend *contracts.TrendInfo, signals *contracts.SignalSet) *contracts.Recommendation {
	candidates := []candidate{
		s.scoreBreakout(trend, signals),
		s.scorePullback(trend, signals),
		s.scoreHold(trend, signals),
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score ||
			(c.score == best.score && c.strategy.Priority() < best.strategy.Priority()) {
			best = c
		}
	}
	if best.score < s.cfg.MinScore {
		return nil
	}

	return &contracts.Recommendation{
		Symbol:       trend.Symbol,
		Strategy:     best.strategy,
		Score:        best.score,
		EntrySignal:  best.entry,
		HoldSignal:   best.hold,
		Reasons:      best.reasons,
		Targets:      trend.Targets,
		StopLoss:     trend.StopLoss,
		CurrentPrice: trend.CurrentPrice,
	}
}

// scoreBreakout rewards a fresh bullish alignment escaping a density
// base with volume behind it and room above.
func (s *Scorer) scoreBreakout(trend *contracts.TrendInfo, signals *contracts.SignalSet) candidate {
	c := candidate{strategy: contracts.StrategyBreakout, entry: "breakout above short average out of a dense base"}
	b := signals.Breakout
	if !b.HasSignal {
		return c
	}

	if b.DenseRecent {
		c.score += ptsBreakoutDense
		c.reasons = append(c.reasons, fmt.Sprintf("ma density %.1f%%", trend.Density*100))
	}
	if trend.Alignment == contracts.AlignBull {
		c.score += ptsBreakoutBull
		if b.FreshAlignment {
			c.score += ptsBreakoutFresh
			c.reasons = append(c.reasons, "bullish alignment just formed")
		} else {
			c.reasons = append(c.reasons, "bullish alignment")
		}
	}
	if b.PriceAboveMA {
		c.score += ptsBreakoutAboveMA
		c.reasons = append(c.reasons, "close above short moving average")
	}
	if b.VolumeConfirmed {
		c.score += ptsBreakoutVolume
		c.reasons = append(c.reasons, "volume expansion")
	}
	if rr := bestRiskReward(trend); rr > 0 {
		scaled := rr / s.cfg.RiskRewardTarget
		if scaled > 1 {
			scaled = 1
		}
		pts := int(float64(ptsBreakoutRR) * scaled)
		if pts > 0 {
			c.score += pts
			c.reasons = append(c.reasons, fmt.Sprintf("reward:risk %.1f:1", rr))
		}
	}

	if c.score > maxScore {
		c.score = maxScore
	}
	return c
}

// scorePullback rewards a retrace onto a slow average inside an intact
// uptrend; the slower the reclaimed average, the more points.
func (s *Scorer) scorePullback(trend *contracts.TrendInfo, signals *contracts.SignalSet) candidate {
	c := candidate{strategy: contracts.StrategyPullback}
	p := signals.Pullback
	if !p.HasSignal {
		return c
	}
	c.entry = fmt.Sprintf("pullback to MA%d", p.PullbackTo)

	if trend.Alignment == contracts.AlignBull {
		c.score += ptsPullbackBull
		c.reasons = append(c.reasons, "full bullish alignment")
	}
	if rank := windowRank(trend, p.PullbackTo); rank >= 0 {
		c.score += ptsPullbackBase + rank*ptsPullbackStep
		c.reasons = append(c.reasons, fmt.Sprintf("retraced onto MA%d", p.PullbackTo))
	}
	if p.IsFirstPullback {
		c.score += ptsPullbackFirst
		c.reasons = append(c.reasons, "first pullback since the trend formed")
	}
	if p.DiscountSafe {
		c.score += ptsPullbackSafe
		c.reasons = append(c.reasons, "close above the discount price, average keeps rising")
	}
	if signals.Structure.DoubleBottom.Found {
		c.score += ptsPullbackStructure
		c.reasons = append(c.reasons, "double bottom in place")
	}

	if c.score > maxScore {
		c.score = maxScore
	}
	return c
}

// scoreHold only applies to an accelerating uptrend: hold, never chase.
// A top structure or an extreme deviation voids the call entirely.
func (s *Scorer) scoreHold(trend *contracts.TrendInfo, signals *contracts.SignalSet) candidate {
	c := candidate{strategy: contracts.StrategyHoldAccelerate, entry: "do not chase"}
	if trend.TrendType != contracts.TrendAccelerateUp {
		return c
	}

	bias := longestBias(trend)
	if signals.Structure.DoubleTop.Found {
		c.reasons = append(c.reasons, "double top forming, exit territory")
		return c
	}
	if bias > s.cfg.ExtremeBias || bias < -s.cfg.ExtremeBias {
		c.reasons = append(c.reasons, fmt.Sprintf("deviation %.0f%% past the extreme threshold", bias*100))
		return c
	}

	c.score = s.cfg.HoldBaseScore
	c.hold = "hold existing position"
	c.reasons = append(c.reasons,
		"accelerating uptrend",
		"no top structure yet",
		fmt.Sprintf("deviation %.0f%% still below the extreme threshold", bias*100),
	)
	return c
}

// bestRiskReward returns the best target gain against the stop distance.
func bestRiskReward(trend *contracts.TrendInfo) float64 {
	if trend.StopLoss.Pct <= 0 {
		return 0
	}
	best := 0.0
	for _, target := range trend.Targets {
		if rr := target.GainPct / trend.StopLoss.Pct; rr > best {
			best = rr
		}
	}
	return best
}

// windowRank returns the position of w among the configured windows,
// shortest first, or -1 when unknown.
func windowRank(trend *contracts.TrendInfo, w int) int {
	windows := make([]int, 0, len(trend.Turning))
	for k := range trend.Turning {
		windows = append(windows, k)
	}
	sort.Ints(windows)
	for i, k := range windows {
		if k == w {
			return i
		}
	}
	return -1
}

// longestBias returns the deviation ratio of the longest window.
func longestBias(trend *contracts.TrendInfo) float64 {
	longest := -1
	for w := range trend.Bias {
		if w > longest {
			longest = w
		}
	}
	if longest < 0 {
		return 0
	}
	return trend.Bias[longest]
}
