package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

func sampleResult() *contracts.BatchResult {
	return &contracts.BatchResult{
		Date: time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC),
		Recommendations: []contracts.Recommendation{
			{
				Symbol:      "005930",
				Strategy:    contracts.StrategyBreakout,
				Score:       92,
				EntrySignal: "buy on breakout above the consolidation zone",
				Reasons:     []string{"breakout from dense zone", "volume surge"},
				Targets: []contracts.Target{
					{Level: 1, Price: 133, GainPct: 2.3, Source: "atr"},
					{Level: 2, Price: 136, GainPct: 4.6, Source: "atr"},
				},
				StopLoss:     contracts.StopLoss{Price: 123.5, Pct: 0.05, Basis: "fixed_pct"},
				CurrentPrice: 130,
				Prediction: &contracts.Prediction{
					Targets: []contracts.PredictedTarget{
						{Level: 1, Price: 133, GainPct: 2.3, Probability: 0.65},
					},
					Holding:     contracts.HoldingPeriod{MinDays: 5, TargetDays: 20, MaxDays: 60},
					SuccessRate: 0.70,
					ExitChecks: []contracts.ExitCheck{
						{Name: "stop_loss", Condition: "close below 123.50", Triggered: false},
						{Name: "top_structure", Condition: "double top confirmed", Triggered: true},
					},
				},
			},
			{
				Symbol:       "000660",
				Strategy:     contracts.StrategyHoldAccelerate,
				Score:        61,
				HoldSignal:   "hold existing position",
				Reasons:      []string{"accelerating uptrend"},
				StopLoss:     contracts.StopLoss{Price: 228, Pct: 0.034, Basis: "ma20"},
				CurrentPrice: 236,
			},
		},
		Skipped: []contracts.SkippedSymbol{
			{Symbol: "035720", Reason: contracts.SkipInsufficientData, Detail: "40 bars, need 120"},
			{Symbol: "TINY", Reason: contracts.SkipMalformedSeries},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult())

	assert.True(t, strings.HasPrefix(md, "# Daily Recommendations (2025-06-13)"))
	assert.Contains(t, md, "| 1 | 005930 | breakout | 92 | 130.00 |")
	assert.Contains(t, md, "| 2 | 000660 | hold_accelerate | 61 | 236.00 |")
	assert.Contains(t, md, "## 1. 005930 — breakout (score 92)")
	assert.Contains(t, md, "**Entry**: buy on breakout above the consolidation zone")
	assert.Contains(t, md, "- breakout from dense zone")
	assert.Contains(t, md, "- T1: 133.00 (+2.3%, atr)")
	assert.Contains(t, md, "**Stop loss**: 123.50 (-5.0%, fixed_pct)")
	assert.Contains(t, md, "- Success rate: 70%")
	assert.Contains(t, md, "- Holding period: 5-60 days (target 20)")
	assert.Contains(t, md, "- T1 133.00: 65% chance")
	assert.Contains(t, md, "Exit check triggered: top_structure (double top confirmed)")
	assert.NotContains(t, md, "Exit check triggered: stop_loss")
	assert.Contains(t, md, "**Hold**: hold existing position")
	assert.Contains(t, md, "- 035720: insufficient_data (40 bars, need 120)")
	assert.Contains(t, md, "- TINY: malformed_series\n")
}

func TestMarkdownEmpty(t *testing.T) {
	md := Markdown(&contracts.BatchResult{Date: time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)})

	assert.Contains(t, md, "No recommendations today.")
	assert.NotContains(t, md, "## Skipped")
}

func TestSummary(t *testing.T) {
	text := Summary(sampleResult())

	assert.True(t, strings.HasPrefix(text, "=== Recommendations (2025-06-13) ==="))
	assert.Contains(t, text, "Recommended: 2, Skipped: 2")
	assert.Contains(t, text, "1. 005930")
	assert.Contains(t, text, "score=92")
	assert.Contains(t, text, "skip 035720: insufficient_data")
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(sampleResult())
	require.NoError(t, err)

	var decoded contracts.BatchResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "005930", decoded.Recommendations[0].Symbol)
	assert.Len(t, decoded.Skipped, 2)
}
