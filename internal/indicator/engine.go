package indicator

import (
	"fmt"
	"math"
	"sort"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

// Config holds the windows and lookbacks the engine derives with.
// Values are validated upstream by analysiscfg; DefaultConfig is the
// reference parameterization.
type Config struct {
	Windows       []int // ascending MA/EMA/discount/bias windows
	SlopeLookback int   // bars between MA samples for the slope
	AnnualDays    int   // trading days used to annualize the slope
	ATRWindow     int
	VolumeWindow  int
}

// DefaultConfig returns the standard daily-bar parameterization.
func DefaultConfig() Config {
	return Config{
		Windows:       []int{20, 60, 120},
		SlopeLookback: 20,
		AnnualDays:    252,
		ATRWindow:     14,
		VolumeWindow:  20,
	}
}

// Engine derives indicator frames from price series.
// Pure transform: no I/O, no mutation of the input series.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine. Windows are copied and sorted so the
// caller's slice stays untouched.
func NewEngine(cfg Config) *Engine {
	ws := make([]int, len(cfg.Windows))
	copy(ws, cfg.Windows)
	sort.Ints(ws)
	cfg.Windows = ws
	return &Engine{cfg: cfg}
}

// MinBars returns the series length required before every column is
// defined at the latest index.
func (e *Engine) MinBars() int {
	return e.cfg.Windows[len(e.cfg.Windows)-1] + e.cfg.SlopeLookback
}

// Compute derives the full indicator frame for a series.
// Fails with ErrInsufficientData when the series is shorter than
// max(windows)+slope lookback; it never yields partially garbage columns.
func (e *Engine) Compute(series *contracts.Series) (*Frame, error) {
	n := series.Len()
	if need := e.MinBars(); n < need {
		return nil, fmt.Errorf("%w: need %d bars, have %d", contracts.ErrInsufficientData, need, n)
	}

	closes := series.Closes()

	f := &Frame{
		Series:   series,
		Windows:  e.cfg.Windows,
		MA:       make(map[int][]float64, len(e.cfg.Windows)),
		EMA:      make(map[int][]float64, len(e.cfg.Windows)),
		Discount: make(map[int][]float64, len(e.cfg.Windows)),
		Bias:     make(map[int][]float64, len(e.cfg.Windows)),
		Slope:    make(map[int][]float64, len(e.cfg.Windows)),
	}

	for _, w := range e.cfg.Windows {
		ma := rollingMean(closes, w)
		f.MA[w] = ma
		f.EMA[w] = ema(closes, ma, w)
		f.Discount[w] = discount(closes, w)
		f.Bias[w] = bias(closes, ma)
		f.Slope[w] = slope(ma, e.cfg.SlopeLookback, e.cfg.AnnualDays)
	}

	f.Density, f.Alignment = crossWindow(f.MA, e.cfg.Windows, n)
	f.ATR = atr(series.Bars, e.cfg.ATRWindow)
	f.VolRatio = volumeRatio(series.Volumes(), e.cfg.VolumeWindow)

	return f, nil
}

// rollingMean computes SMA(w); NaN while the window fills.
func rollingMean(values []float64, w int) []float64 {
	out := nanSlice(len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= w {
			sum -= values[i-w]
		}
		if i >= w-1 {
			out[i] = sum / float64(w)
		}
	}
	return out
}

// ema computes EMA(w) with alpha=2/(w+1), seeded by the first defined
// SMA so early values are anchored, not free-running.
func ema(values, ma []float64, w int) []float64 {
	out := nanSlice(len(values))
	if len(values) < w {
		return out
	}
	alpha := 2.0 / (float64(w) + 1.0)
	out[w-1] = ma[w-1]
	for i := w; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// discount returns the close that exits the trailing window when the
// series advances one bar: discount(w)[i] = close[i-w+1]. Tomorrow's
// close beating it is exactly the condition for MA(w) to rise.
func discount(values []float64, w int) []float64 {
	out := nanSlice(len(values))
	for i := w - 1; i < len(values); i++ {
		out[i] = values[i-w+1]
	}
	return out
}

func bias(values, ma []float64) []float64 {
	out := nanSlice(len(values))
	for i := range values {
		if Defined(ma[i]) && ma[i] != 0 {
			out[i] = (values[i] - ma[i]) / ma[i]
		}
	}
	return out
}

// slope annualizes the MA percentage change over the lookback.
func slope(ma []float64, lookback, annualDays int) []float64 {
	out := nanSlice(len(ma))
	factor := float64(annualDays) / float64(lookback)
	for i := lookback; i < len(ma); i++ {
		prev := ma[i-lookback]
		if Defined(ma[i]) && Defined(prev) && prev != 0 {
			out[i] = (ma[i]/prev - 1) * factor
		}
	}
	return out
}

// crossWindow derives density and alignment from the per-window MAs.
// Alignment is strict: any equality between adjacent windows is mixed.
func crossWindow(mas map[int][]float64, windows []int, n int) ([]float64, []contracts.Alignment) {
	density := nanSlice(n)
	alignment := make([]contracts.Alignment, n)
	for i := 0; i < n; i++ {
		alignment[i] = contracts.AlignMixed

		lo, hi := math.Inf(1), math.Inf(-1)
		defined := true
		for _, w := range windows {
			v := mas[w][i]
			if !Defined(v) {
				defined = false
				break
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if !defined {
			continue
		}
		if lo > 0 {
			density[i] = (hi - lo) / lo
		}

		bull, bear := true, true
		for j := 0; j < len(windows)-1; j++ {
			a := mas[windows[j]][i]
			b := mas[windows[j+1]][i]
			bull = bull && a > b
			bear = bear && a < b
		}
		switch {
		case bull:
			alignment[i] = contracts.AlignBull
		case bear:
			alignment[i] = contracts.AlignBear
		}
	}
	return density, alignment
}

// atr computes the simple moving average of the true range.
func atr(bars []contracts.Bar, w int) []float64 {
	n := len(bars)
	tr := nanSlice(n)
	for i := 1; i < n; i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	out := nanSlice(n)
	var sum float64
	for i := 1; i < n; i++ {
		sum += tr[i]
		if i > w {
			sum -= tr[i-w]
		}
		if i >= w {
			out[i] = sum / float64(w)
		}
	}
	return out
}

// volumeRatio compares each bar's volume against its trailing average.
func volumeRatio(volumes []float64, w int) []float64 {
	avg := rollingMean(volumes, w)
	out := nanSlice(len(volumes))
	for i := range volumes {
		if Defined(avg[i]) && avg[i] > 0 {
			out[i] = volumes[i] / avg[i]
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
