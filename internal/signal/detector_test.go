package signal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RylynnLai/trading-tips/internal/contracts"
	"github.com/RylynnLai/trading-tips/internal/indicator"
)

// mkFrame builds a frame over the given closes with every indicator
// column undefined; tests set only what their scenario needs.
func mkFrame(t *testing.T, closes []float64) *indicator.Frame {
	t.Helper()

	bars := make([]contracts.Bar, len(closes))
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = contracts.Bar{
			Date: day.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c,
			Volume: 1000, Amount: c * 1000,
		}
	}
	series, err := contracts.NewSeries("TEST.SIG", bars)
	require.NoError(t, err)

	n := len(closes)
	windows := []int{20, 60, 120}
	f := &indicator.Frame{
		Series:   series,
		Windows:  windows,
		MA:       map[int][]float64{},
		EMA:      map[int][]float64{},
		Discount: map[int][]float64{},
		Bias:     map[int][]float64{},
		Slope:    map[int][]float64{},
	}
	for _, w := range windows {
		f.MA[w] = nan(n)
		f.EMA[w] = nan(n)
		f.Discount[w] = nan(n)
		f.Bias[w] = nan(n)
		f.Slope[w] = nan(n)
	}
	f.Density = nan(n)
	f.Alignment = make([]contracts.Alignment, n)
	for i := range f.Alignment {
		f.Alignment[i] = contracts.AlignMixed
	}
	f.ATR = nan(n)
	f.VolRatio = nan(n)
	return f
}

func nan(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestScanExtrema(t *testing.T) {
	// Clear swing at index 5 (peak 110) and 10 (trough 95), plus a
	// sub-prominence wiggle at 15 that must be filtered out.
	prices := []float64{100, 101, 103, 105, 108, 110, 106, 102, 99, 97, 95, 98, 100, 100, 100.5, 101, 100.5, 100, 100, 100}

	extrema := scanExtrema(prices, 0.02, 5)
	require.Len(t, extrema, 2)
	assert.Equal(t, Peak, extrema[0].Kind)
	assert.Equal(t, 5, extrema[0].Index)
	assert.Equal(t, Trough, extrema[1].Kind)
	assert.Equal(t, 10, extrema[1].Index)
}

func TestScanExtrema_SeparationKeepsMostExtreme(t *testing.T) {
	// Two peaks 3 bars apart: the higher one survives.
	prices := []float64{100, 105, 100, 103, 110, 100, 95, 95, 95, 95}

	extrema := scanExtrema(prices, 0.02, 5)
	var peaks []Extremum
	for _, e := range extrema {
		if e.Kind == Peak {
			peaks = append(peaks, e)
		}
	}
	require.Len(t, peaks, 1)
	assert.Equal(t, 4, peaks[0].Index)
	assert.Equal(t, 110.0, peaks[0].Price)
}

func TestDetect2B_Bullish(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// Prior low 100 at index 70, breach to 98 at 80, recovery to 103
	// at 83, price holds above into the latest bar.
	closes := flat(100, 110)
	closes[68], closes[69], closes[70], closes[71], closes[72] = 104, 102, 100, 103, 105
	closes[78], closes[79], closes[80], closes[81], closes[82] = 104, 101, 98, 99, 100
	for i := 83; i < 100; i++ {
		closes[i] = 103
	}

	set, err := d.Detect(mkFrame(t, closes))
	require.NoError(t, err)

	b := set.Reversal.Bullish
	require.True(t, b.Found)
	assert.Equal(t, 70, b.PriorExtremeIdx)
	assert.Equal(t, 100.0, b.PriorExtreme)
	assert.Equal(t, 80, b.BreachIdx)
	assert.Equal(t, 83, b.RecoveryIdx)
	assert.False(t, set.Reversal.Bearish.Found)
}

func TestDetect2B_NoRecovery(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// Breach with no bounce back: price stays under the prior low.
	closes := flat(100, 110)
	closes[68], closes[69], closes[70], closes[71], closes[72] = 104, 102, 100, 103, 105
	for i := 80; i < 100; i++ {
		closes[i] = 97
	}

	set, err := d.Detect(mkFrame(t, closes))
	require.NoError(t, err)
	assert.False(t, set.Reversal.Bullish.Found)
}

func TestDetect2B_Bearish(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// Prior high 120 at 70, false breakout starting at 79, collapse
	// back under 120 within the recovery window.
	closes := flat(100, 100)
	closes[68], closes[69], closes[70], closes[71], closes[72] = 114, 117, 120, 116, 112
	closes[78], closes[79], closes[80], closes[81] = 118, 121.5, 123, 122
	for i := 82; i < 100; i++ {
		closes[i] = 115
	}

	set, err := d.Detect(mkFrame(t, closes))
	require.NoError(t, err)

	b := set.Reversal.Bearish
	require.True(t, b.Found)
	assert.Equal(t, 70, b.PriorExtremeIdx)
	assert.Equal(t, 120.0, b.PriorExtreme)
	assert.Equal(t, 79, b.BreachIdx)
	assert.Equal(t, 82, b.RecoveryIdx)
}

func TestDetectStructure_DoubleBottom(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// Two troughs at ~100 inside the 30-bar structure window with a
	// pivot rebound past the tolerance between them.
	closes := flat(100, 105)
	closes[80], closes[81], closes[82] = 103, 100, 102
	closes[89], closes[90], closes[91] = 103, 100.5, 103

	set, err := d.Detect(mkFrame(t, closes))
	require.NoError(t, err)

	m := set.Structure.DoubleBottom
	require.True(t, m.Found)
	assert.Equal(t, 81, m.FirstIdx)
	assert.Equal(t, 90, m.SecondIdx)
	assert.Equal(t, 100.0, m.FirstPrice)
	assert.Equal(t, 100.5, m.SecondPrice)
	assert.Equal(t, 105.0, m.PivotPrice)
}

func TestDetectStructure_ToleranceRejectsUnevenPair(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// Second trough 8% above the first: not a double bottom.
	closes := flat(100, 110)
	closes[80], closes[81], closes[82] = 103, 100, 103
	closes[85], closes[86] = 112, 113
	closes[89], closes[90], closes[91] = 110, 108, 111
	for i := 92; i < 100; i++ {
		closes[i] = 112
	}

	set, err := d.Detect(mkFrame(t, closes))
	require.NoError(t, err)
	assert.False(t, set.Structure.DoubleBottom.Found)
}

func TestDetectBreakout(t *testing.T) {
	d := NewDetector(DefaultConfig())

	f := mkFrame(t, flat(100, 100))
	last := f.LastIndex()
	f.Density[last-3] = 0.03 // base formed a few bars back
	f.Density[last] = 0.06
	for i := last - 2; i <= last; i++ {
		f.Alignment[i] = contracts.AlignBull
	}
	f.Alignment[last-3] = contracts.AlignMixed
	f.MA[20][last] = 97 // close 100 clears by ~3.1%
	f.VolRatio[last] = 3.0

	set, err := d.Detect(f)
	require.NoError(t, err)

	b := set.Breakout
	assert.True(t, b.HasSignal)
	assert.True(t, b.DenseRecent)
	assert.True(t, b.FreshAlignment)
	assert.True(t, b.PriceAboveMA)
	assert.True(t, b.VolumeConfirmed)
	assert.InDelta(t, 0.06, b.MADensity, 1e-12)

	// clearance 3/97 -> 0.6*(0.0309/0.05); volume excess 2 -> 0.4*1.
	want := 0.6*((3.0/97.0)/0.05) + 0.4
	assert.InDelta(t, want, b.Strength, 1e-9)
	assert.LessOrEqual(t, b.Strength, 1.0)

	t.Run("no volume, no signal", func(t *testing.T) {
		f.VolRatio[last] = 1.1
		set, err := d.Detect(f)
		require.NoError(t, err)
		assert.False(t, set.Breakout.HasSignal)
		assert.False(t, set.Breakout.VolumeConfirmed)
	})

	t.Run("stale alignment, no signal", func(t *testing.T) {
		f.VolRatio[last] = 3.0
		for i := 0; i <= last; i++ {
			f.Alignment[i] = contracts.AlignBull
		}
		set, err := d.Detect(f)
		require.NoError(t, err)
		assert.False(t, set.Breakout.HasSignal)
		assert.False(t, set.Breakout.FreshAlignment)
	})
}

func TestDetectPullback(t *testing.T) {
	d := NewDetector(DefaultConfig())

	t.Run("closest average wins", func(t *testing.T) {
		f := mkFrame(t, flat(100, 100))
		last := f.LastIndex()
		f.Alignment[last] = contracts.AlignBull
		f.MA[20][last] = 110 // out of band
		f.MA[60][last] = 99  // 1% away
		f.MA[120][last] = 95 // out of band
		f.Discount[60][last] = 98

		set, err := d.Detect(f)
		require.NoError(t, err)

		p := set.Pullback
		require.True(t, p.HasSignal)
		assert.Equal(t, 60, p.PullbackTo)
		assert.InDelta(t, 1.0/99.0, p.Distance, 1e-12)
		assert.True(t, p.IsFirstPullback)
		assert.True(t, p.DiscountSafe)
	})

	t.Run("equal distance prefers the longer window", func(t *testing.T) {
		f := mkFrame(t, flat(100, 100))
		last := f.LastIndex()
		f.Alignment[last] = contracts.AlignBull
		f.MA[20][last] = 99
		f.MA[60][last] = 99

		set, err := d.Detect(f)
		require.NoError(t, err)
		assert.Equal(t, 60, set.Pullback.PullbackTo)
	})

	t.Run("earlier touch clears the first-pullback flag", func(t *testing.T) {
		f := mkFrame(t, flat(100, 100))
		last := f.LastIndex()
		for i := last - 10; i <= last; i++ {
			f.Alignment[i] = contracts.AlignBull
		}
		f.MA[60][last] = 99
		f.MA[60][last-5] = 100 // that bar already sat on the average

		set, err := d.Detect(f)
		require.NoError(t, err)
		require.True(t, set.Pullback.HasSignal)
		assert.False(t, set.Pullback.IsFirstPullback)
	})

	t.Run("no signal without bullish stacking", func(t *testing.T) {
		f := mkFrame(t, flat(100, 100))
		f.MA[60][f.LastIndex()] = 99

		set, err := d.Detect(f)
		require.NoError(t, err)
		assert.False(t, set.Pullback.HasSignal)
	})
}

func TestDetect_InsufficientData(t *testing.T) {
	d := NewDetector(DefaultConfig())
	_, err := d.Detect(mkFrame(t, flat(40, 100)))
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestDetect_QuietSeriesIsAllFalse(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// Low-amplitude alternation: wiggles stay under the prominence
	// filter, no indicator column is set, so nothing can fire.
	closes := make([]float64, 120)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 100.5
		}
	}

	set, err := d.Detect(mkFrame(t, closes))
	require.NoError(t, err)
	assert.False(t, set.Any())
}
