package contracts

import "time"

// Strategy names the candidate strategies the scorer evaluates.
type Strategy string

const (
	StrategyBreakout       Strategy = "breakout"
	StrategyPullback       Strategy = "pullback"
	StrategyHoldAccelerate Strategy = "hold_accelerate"
)

// Priority orders strategies for tie-breaks: breakout opportunities have
// the largest asymmetric payoff, so they win equal scores.
func (s Strategy) Priority() int {
	switch s {
	case StrategyBreakout:
		return 0
	case StrategyPullback:
		return 1
	case StrategyHoldAccelerate:
		return 2
	default:
		return 3
	}
}

// Recommendation is one actionable trade suggestion.
type Recommendation struct {
	Symbol       string      `json:"symbol"`
	Strategy     Strategy    `json:"strategy"`
	Score        int         `json:"score"` // [0,100]
	EntrySignal  string      `json:"entry_signal,omitempty"`
	HoldSignal   string      `json:"hold_signal,omitempty"`
	Reasons      []string    `json:"reasons"`
	Targets      []Target    `json:"targets"`
	StopLoss     StopLoss    `json:"stop_loss"`
	CurrentPrice float64     `json:"current_price"`
	Prediction   *Prediction `json:"prediction,omitempty"`
}

// PredictedTarget is one rung of the profit ladder with its estimated
// probability of being reached.
type PredictedTarget struct {
	Level       int     `json:"level"`
	Price       float64 `json:"price"`
	GainPct     float64 `json:"gain_pct"`
	Probability float64 `json:"probability"`
}

// HoldingPeriod is the suggested holding horizon in trading days.
type HoldingPeriod struct {
	MinDays    int `json:"min_days"`
	TargetDays int `json:"target_days"`
	MaxDays    int `json:"max_days"`
}

// ExitCheck is one exit condition with its current trigger state.
type ExitCheck struct {
	Name      string `json:"name"`
	Condition string `json:"condition"`
	Triggered bool   `json:"triggered"`
}

// Prediction is the profit/exit outlook attached to a recommendation.
type Prediction struct {
	Targets     []PredictedTarget `json:"targets"`
	Holding     HoldingPeriod     `json:"holding_period"`
	SuccessRate float64           `json:"success_rate"`
	ExitChecks  []ExitCheck       `json:"exit_checks"`
}

// SkipReason codes why a symbol was excluded from a batch result.
type SkipReason string

const (
	SkipInsufficientData SkipReason = "insufficient_data"
	SkipMalformedSeries  SkipReason = "malformed_series"
	SkipAnalysisFailed   SkipReason = "analysis_failed"
)

// SkippedSymbol records one excluded symbol with its reason.
type SkippedSymbol struct {
	Symbol string     `json:"symbol"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// SymbolDetail exposes the full classifier and detector output for
// report/diagnostic consumers.
type SymbolDetail struct {
	Trend   *TrendInfo `json:"trend"`
	Signals *SignalSet `json:"signals"`
}

// BatchResult is the outcome of one analysis run across many symbols.
// Recommendations are sorted by score descending, ties broken by symbol
// ascending, and truncated to the configured maximum. Skipped symbols are
// reported alongside so "no signal" and "could not analyze" stay
// distinguishable.
type BatchResult struct {
	Date            time.Time                `json:"date"`
	Recommendations []Recommendation         `json:"recommendations"`
	Skipped         []SkippedSymbol          `json:"skipped"`
	Details         map[string]*SymbolDetail `json:"details,omitempty"`
}
