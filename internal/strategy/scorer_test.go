package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

func bullTrend() *contracts.TrendInfo {
	return &contracts.TrendInfo{
		Symbol:    "005930",
		TrendType: contracts.TrendStableUp,
		Phase:     contracts.PhaseDevelop,
		Alignment: contracts.AlignBull,
		Density:   0.03,
		Bias:      map[int]float64{20: 0.04, 60: 0.08, 120: 0.12},
		Turning: map[int]contracts.TurnPrediction{
			20:  {Window: 20},
			60:  {Window: 60},
			120: {Window: 120},
		},
		StopLoss:     contracts.StopLoss{Price: 95, Pct: 5, Basis: "fixed_pct"},
		CurrentPrice: 100,
	}
}

func TestScoreBreakout_FullSetupCapsAtHundred(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	trend := bullTrend()
	trend.Targets = []contracts.Target{
		{Level: 1, Price: 115, GainPct: 15, Source: "dense_zone"},
	}
	signals := &contracts.SignalSet{
		Breakout: contracts.BreakoutSignal{
			HasSignal:       true,
			DenseRecent:     true,
			FreshAlignment:  true,
			PriceAboveMA:    true,
			VolumeConfirmed: true,
		},
	}

	// 30+25+10+15+10 = 90, reward:risk 15/5 = 3.0 adds the full 20,
	// capped at 100.
	rec := scorer.Score(trend, signals)
	require.NotNil(t, rec)
	assert.Equal(t, contracts.StrategyBreakout, rec.Strategy)
	assert.Equal(t, 100, rec.Score)
	assert.Equal(t, "005930", rec.Symbol)
	assert.NotEmpty(t, rec.Reasons)
}

func TestScoreBreakout_PartialSetup(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	trend := bullTrend()
	trend.Targets = []contracts.Target{
		{Level: 1, Price: 107.5, GainPct: 7.5, Source: "atr"},
	}
	signals := &contracts.SignalSet{
		Breakout: contracts.BreakoutSignal{
			HasSignal:       true,
			DenseRecent:     true,
			FreshAlignment:  false,
			PriceAboveMA:    true,
			VolumeConfirmed: true,
		},
	}

	// 30+25+15+10 = 80, reward:risk 1.5 scales the 20 down to 10.
	rec := scorer.Score(trend, signals)
	require.NotNil(t, rec)
	assert.Equal(t, contracts.StrategyBreakout, rec.Strategy)
	assert.Equal(t, 90, rec.Score)
}

func TestScore_BelowMinimumReturnsNil(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	trend := bullTrend()
	trend.Alignment = contracts.AlignMixed
	signals := &contracts.SignalSet{
		Breakout: contracts.BreakoutSignal{
			HasSignal:    true,
			DenseRecent:  true,
			PriceAboveMA: true,
		},
	}

	// 30+15 = 45 < 60.
	assert.Nil(t, scorer.Score(trend, signals))
}

func TestScorePullback_PointLadder(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	trend := bullTrend()
	signals := &contracts.SignalSet{
		Pullback: contracts.PullbackSignal{
			HasSignal:       true,
			PullbackTo:      60,
			Distance:        0.006,
			IsFirstPullback: true,
			DiscountSafe:    true,
		},
	}

	// 20 bull + 40 (middle window) + 15 first + 10 safe = 85.
	rec := scorer.Score(trend, signals)
	require.NotNil(t, rec)
	assert.Equal(t, contracts.StrategyPullback, rec.Strategy)
	assert.Equal(t, 85, rec.Score)
	assert.Equal(t, "pullback to MA60", rec.EntrySignal)

	// A double bottom behind the retrace adds 15 more.
	signals.Structure.DoubleBottom.Found = true
	rec = scorer.Score(trend, signals)
	require.NotNil(t, rec)
	assert.Equal(t, 100, rec.Score)
}

func TestScorePullback_SlowerWindowScoresHigher(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScore = 40 // keep the shortest-window retrace above the floor
	scorer := NewScorer(cfg)
	trend := bullTrend()

	scores := map[int]int{}
	for _, w := range []int{20, 60, 120} {
		signals := &contracts.SignalSet{
			Pullback: contracts.PullbackSignal{HasSignal: true, PullbackTo: w},
		}
		rec := scorer.Score(trend, signals)
		require.NotNil(t, rec, "window %d", w)
		scores[w] = rec.Score
	}

	// 20 bull + 30/40/50 by window rank.
	assert.Equal(t, 50, scores[20])
	assert.Equal(t, 60, scores[60])
	assert.Equal(t, 70, scores[120])
}

func TestScore_EqualScoresPreferBreakout(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	trend := bullTrend()
	signals := &contracts.SignalSet{
		Breakout: contracts.BreakoutSignal{
			HasSignal:    true,
			DenseRecent:  true,
			PriceAboveMA: true,
		},
		Pullback: contracts.PullbackSignal{
			HasSignal:  true,
			PullbackTo: 120,
		},
	}

	// Breakout 30+25+15 = 70, pullback 20+50 = 70. Priority breaks the
	// tie toward the breakout.
	rec := scorer.Score(trend, signals)
	require.NotNil(t, rec)
	assert.Equal(t, 70, rec.Score)
	assert.Equal(t, contracts.StrategyBreakout, rec.Strategy)
}

func TestScoreHold_OnlyInAcceleratingUptrend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScore = 40 // hold base sits below the default floor
	scorer := NewScorer(cfg)

	trend := bullTrend()
	trend.TrendType = contracts.TrendAccelerateUp
	signals := &contracts.SignalSet{}

	rec := scorer.Score(trend, signals)
	require.NotNil(t, rec)
	assert.Equal(t, contracts.StrategyHoldAccelerate, rec.Strategy)
	assert.Equal(t, 50, rec.Score)
	assert.Equal(t, "hold existing position", rec.HoldSignal)

	// A stable uptrend never yields a hold call.
	trend.TrendType = contracts.TrendStableUp
	assert.Nil(t, scorer.Score(trend, signals))
}

func TestScoreHold_VoidedByTopStructure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScore = 40
	scorer := NewScorer(cfg)

	trend := bullTrend()
	trend.TrendType = contracts.TrendAccelerateUp
	signals := &contracts.SignalSet{}
	signals.Structure.DoubleTop.Found = true

	assert.Nil(t, scorer.Score(trend, signals))
}

func TestScoreHold_VoidedByExtremeDeviation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScore = 40
	scorer := NewScorer(cfg)

	trend := bullTrend()
	trend.TrendType = contracts.TrendAccelerateUp
	trend.Bias[120] = 0.55

	assert.Nil(t, scorer.Score(trend, &contracts.SignalSet{}))
}

func TestDefaultScoringConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 60, cfg.MinScore)
	assert.Equal(t, 20, cfg.MaxRecommendations)
	assert.Equal(t, 3.0, cfg.RiskRewardTarget)
	assert.Equal(t, 0.50, cfg.ExtremeBias)
}
