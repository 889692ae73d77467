// Package lowvol ranks the universe by defensive quality: low realised
// volatility with positive momentum. It runs beside the trend pipeline
// and produces its own ranked list.
package lowvol

import (
	"fmt"
	"math"
	"sort"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

const tradingDaysPerYear = 252

// Config holds the screening parameters. Percent fields are whole
// percents (3 = 3%), windows are bar counts.
type Config struct {
	VolatilityWindow int     // bars used for realised volatility
	MomentumWindow   int     // bars used for momentum
	LowVolPercentile float64 // volatility cutoff within the universe
	TopN             int     // positions in the rotation
	MinLiquidity     float64 // minimum average trading amount
	MaxPositionPct   float64 // cap on a single position weight
	StopLossPct      float64 // fixed stop below entry
	MinMomentum      float64 // momentum floor, percent
	RiskFreeRate     float64 // annual rate for the Sharpe ratio
}

// DefaultConfig returns the standard rotation parameters.
func DefaultConfig() Config {
	return Config{
		VolatilityWindow: 60,
		MomentumWindow:   20,
		LowVolPercentile: 30,
		TopN:             10,
		MinLiquidity:     10_000_000,
		MaxPositionPct:   15,
		StopLossPct:      3,
		MinMomentum:      0,
		RiskFreeRate:     0.02,
	}
}

// Metrics are the per-symbol screening measurements. Volatility,
// momentum and drawdown are percents; Sharpe is NaN when the return
// series has no spread.
type Metrics struct {
	Symbol      string  `json:"symbol"`
	Close       float64 `json:"close"`
	ChangePct   float64 `json:"change_pct"`
	Volatility  float64 `json:"volatility"`
	Momentum    float64 `json:"momentum"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
	AvgAmount   float64 `json:"avg_amount"`
	Score       float64 `json:"score"`
}

// Recommendation is one ranked rotation entry.
type Recommendation struct {
	Rank        int      `json:"rank"`
	Symbol      string   `json:"symbol"`
	Close       float64  `json:"close"`
	Score       float64  `json:"score"`
	Volatility  float64  `json:"volatility"`
	Momentum    float64  `json:"momentum"`
	Sharpe      float64  `json:"sharpe"`
	MaxDrawdown float64  `json:"max_drawdown"`
	PositionPct float64  `json:"position_pct"`
	StopLoss    float64  `json:"stop_loss"`
	Reasons     []string `json:"reasons"`
}

// PortfolioStats aggregates the selected rotation.
type PortfolioStats struct {
	Positions         int     `json:"positions"`
	AvgVolatility     float64 `json:"avg_volatility"`
	AvgMomentum       float64 `json:"avg_momentum"`
	AvgSharpe         float64 `json:"avg_sharpe"`
	AvgMaxDrawdown    float64 `json:"avg_max_drawdown"`
	ExpectedAnnualPct float64 `json:"expected_annual_pct"`
}

// Result is one full screening pass over the universe.
type Result struct {
	Recommendations []Recommendation          `json:"recommendations"`
	Stats           PortfolioStats            `json:"stats"`
	Skipped         []contracts.SkippedSymbol `json:"skipped"`
}

// Screener runs the rotation screen. Pure: no I/O, no state between
// calls.
type Screener struct {
	cfg Config
}

// NewScreener creates a screener with the given parameters.
func NewScreener(cfg Config) *Screener {
	return &Screener{cfg: cfg}
}

// Screen measures every symbol, filters to the low-volatility band and
// returns the top positions ranked by momentum per unit of volatility.
// Symbols are processed in sorted order so equal scores rank
// deterministically.
func (s *Screener) Screen(universe map[string][]contracts.Bar) *Result {
	symbols := make([]string, 0, len(universe))
	for symbol := range universe {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	result := &Result{
		Recommendations: []Recommendation{},
		Skipped:         []contracts.SkippedSymbol{},
	}

	metrics := make([]Metrics, 0, len(symbols))
	for _, symbol := range symbols {
		bars := universe[symbol]
		if len(bars) < s.cfg.VolatilityWindow {
			result.Skipped = append(result.Skipped, contracts.SkippedSymbol{
				Symbol: symbol,
				Reason: contracts.SkipInsufficientData,
			})
			continue
		}
		series, err := contracts.NewSeries(symbol, bars)
		if err != nil {
			result.Skipped = append(result.Skipped, contracts.SkippedSymbol{
				Symbol: symbol,
				Reason: contracts.SkipMalformedSeries,
				Detail: err.Error(),
			})
			continue
		}
		metrics = append(metrics, s.measure(series))
	}

	candidates := s.filter(metrics)
	result.Recommendations = s.recommend(candidates)
	result.Stats = s.portfolioStats(result.Recommendations)
	return result
}

// measure computes the screening metrics for one series.
func (s *Screener) measure(series *contracts.Series) Metrics {
	closes := series.Closes()
	amounts := series.Amounts()
	n := len(closes)

	m := Metrics{
		Symbol: series.Symbol,
		Close:  closes[n-1],
	}
	if n >= 2 && closes[n-2] != 0 {
		m.ChangePct = (closes[n-1] - closes[n-2]) / closes[n-2] * 100
	}

	window := lastN(closes, s.cfg.VolatilityWindow)
	m.Volatility = annualizedVolatility(window)
	m.MaxDrawdown = maxDrawdown(window)
	m.Sharpe = sharpeRatio(lastN(pctChanges(closes), s.cfg.VolatilityWindow), s.cfg.RiskFreeRate)

	if n >= s.cfg.MomentumWindow {
		start := closes[n-s.cfg.MomentumWindow]
		if start > 0 {
			m.Momentum = (closes[n-1] - start) / start * 100
		}
	}
	m.AvgAmount = mean(lastN(amounts, s.cfg.MomentumWindow))

	if m.Volatility > 0 {
		m.Score = m.Momentum / m.Volatility
	}
	return m
}

// filter keeps symbols inside the low-volatility band that also clear
// the momentum and liquidity floors. The band cutoff is a percentile of
// the measured universe, so it adapts to the regime.
func (s *Screener) filter(metrics []Metrics) []Metrics {
	if len(metrics) == 0 {
		return nil
	}
	vols := make([]float64, len(metrics))
	for i, m := range metrics {
		vols[i] = m.Volatility
	}
	cutoff := quantile(vols, s.cfg.LowVolPercentile/100)

	var out []Metrics
	for _, m := range metrics {
		if m.Volatility <= cutoff && m.Momentum > s.cfg.MinMomentum && m.AvgAmount >= s.cfg.MinLiquidity {
			out = append(out, m)
		}
	}
	return out
}

// recommend ranks candidates by score and sizes the positions.
func (s *Screener) recommend(candidates []Metrics) []Recommendation {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})
	if len(candidates) > s.cfg.TopN {
		candidates = candidates[:s.cfg.TopN]
	}

	positionPct := math.Min(100/float64(s.cfg.TopN), s.cfg.MaxPositionPct)

	recs := make([]Recommendation, 0, len(candidates))
	for i, m := range candidates {
		recs = append(recs, Recommendation{
			Rank:        i + 1,
			Symbol:      m.Symbol,
			Close:       m.Close,
			Score:       m.Score,
			Volatility:  m.Volatility,
			Momentum:    m.Momentum,
			Sharpe:      m.Sharpe,
			MaxDrawdown: m.MaxDrawdown,
			PositionPct: positionPct,
			StopLoss:    m.Close * (1 - s.cfg.StopLossPct/100),
			Reasons:     s.reasons(m),
		})
	}
	return recs
}

func (s *Screener) reasons(m Metrics) []string {
	reasons := []string{
		fmt.Sprintf("annualized volatility %.1f%% inside the low-vol band", m.Volatility),
		fmt.Sprintf("momentum %+.1f%% over %d bars", m.Momentum, s.cfg.MomentumWindow),
	}
	if !math.IsNaN(m.Sharpe) && m.Sharpe > 0 {
		reasons = append(reasons, fmt.Sprintf("sharpe %.2f above the risk-free rate", m.Sharpe))
	}
	return reasons
}

// portfolioStats averages the selected rotation. NaN Sharpe values are
// excluded from the average. The expected annual return extrapolates
// the momentum window to twelve months.
func (s *Screener) portfolioStats(recs []Recommendation) PortfolioStats {
	stats := PortfolioStats{Positions: len(recs)}
	if len(recs) == 0 {
		return stats
	}

	var sharpes []float64
	for _, r := range recs {
		stats.AvgVolatility += r.Volatility
		stats.AvgMomentum += r.Momentum
		stats.AvgMaxDrawdown += r.MaxDrawdown
		if !math.IsNaN(r.Sharpe) {
			sharpes = append(sharpes, r.Sharpe)
		}
	}
	n := float64(len(recs))
	stats.AvgVolatility /= n
	stats.AvgMomentum /= n
	stats.AvgMaxDrawdown /= n
	stats.AvgSharpe = mean(sharpes)
	stats.ExpectedAnnualPct = stats.AvgMomentum * 12 / float64(s.cfg.MomentumWindow)
	return stats
}
