package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

func mkSeries(t *testing.T, symbol string, closes []float64) *contracts.Series {
	t.Helper()
	bars := make([]contracts.Bar, len(closes))
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = contracts.Bar{
			Date:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
			Amount: c * 1000,
		}
	}
	s, err := contracts.NewSeries(symbol, bars)
	require.NoError(t, err)
	return s
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestEngine_InsufficientData(t *testing.T) {
	eng := NewEngine(DefaultConfig())

	// 40 bars against windows {20,60,120} must refuse, not degrade.
	series := mkSeries(t, "TEST.40", constant(40, 10))
	_, err := eng.Compute(series)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestEngine_DefinednessBoundary(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	need := eng.MinBars()

	short := mkSeries(t, "TEST.SHORT", constant(need-1, 10))
	_, err := eng.Compute(short)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)

	exact := mkSeries(t, "TEST.EXACT", constant(need, 10))
	f, err := eng.Compute(exact)
	require.NoError(t, err)

	last := f.LastIndex()
	for _, w := range f.Windows {
		_, ok := f.MAAt(w, last)
		assert.True(t, ok, "MA(%d) undefined at latest bar", w)
		_, ok = f.DiscountAt(w, last)
		assert.True(t, ok, "Discount(%d) undefined at latest bar", w)
		_, ok = f.BiasAt(w, last)
		assert.True(t, ok, "Bias(%d) undefined at latest bar", w)
		_, ok = f.SlopeAt(w, last)
		assert.True(t, ok, "Slope(%d) undefined at latest bar", w)
	}
	_, ok := f.DensityAt(last)
	assert.True(t, ok, "density undefined at latest bar")
}

func TestEngine_RollingMeanAndEMA(t *testing.T) {
	cfg := Config{Windows: []int{3}, SlopeLookback: 2, AnnualDays: 252, ATRWindow: 2, VolumeWindow: 2}
	eng := NewEngine(cfg)

	closes := []float64{1, 2, 3, 4, 5, 6}
	f, err := eng.Compute(mkSeries(t, "TEST.MA", closes))
	require.NoError(t, err)

	ma := f.MA[3]
	assert.True(t, math.IsNaN(ma[0]))
	assert.True(t, math.IsNaN(ma[1]))
	assert.InDelta(t, 2.0, ma[2], 1e-12)
	assert.InDelta(t, 5.0, ma[5], 1e-12)

	// EMA is anchored to the first defined SMA.
	ema := f.EMA[3]
	assert.True(t, math.IsNaN(ema[1]))
	assert.InDelta(t, ma[2], ema[2], 1e-12)
	alpha := 2.0 / 4.0
	want := closes[3]*alpha + ema[2]*(1-alpha)
	assert.InDelta(t, want, ema[3], 1e-12)
}

func TestEngine_DiscountPriceIdentity(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	closes := make([]float64, 150)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.3
	}
	f, err := eng.Compute(mkSeries(t, "TEST.DP", closes))
	require.NoError(t, err)

	for _, w := range []int{20, 60, 120} {
		for i := w - 1; i < len(closes); i++ {
			dp, ok := f.DiscountAt(w, i)
			require.True(t, ok, "Discount(%d) undefined at %d", w, i)
			assert.Equal(t, closes[i-w+1], dp, "Discount(%d)[%d]", w, i)
		}
	}
}

func TestEngine_SlopeAnnualization(t *testing.T) {
	cfg := Config{Windows: []int{2}, SlopeLookback: 2, AnnualDays: 252, ATRWindow: 2, VolumeWindow: 2}
	eng := NewEngine(cfg)

	f, err := eng.Compute(mkSeries(t, "TEST.SLOPE", []float64{10, 10, 10, 20, 20, 20}))
	require.NoError(t, err)

	// MA2: [_, 10, 10, 15, 20, 20]; slope at 5 = (20/15 - 1) * 126.
	s, ok := f.SlopeAt(2, 5)
	require.True(t, ok)
	assert.InDelta(t, (20.0/15.0-1)*126, s, 1e-9)
}

func TestEngine_DensityAndAlignment(t *testing.T) {
	cfg := Config{Windows: []int{1, 2}, SlopeLookback: 1, AnnualDays: 252, ATRWindow: 2, VolumeWindow: 2}
	eng := NewEngine(cfg)

	// Rising closes: MA1 > MA2 once both defined, so bull stacking.
	f, err := eng.Compute(mkSeries(t, "TEST.ALIGN", []float64{10, 11, 12, 13}))
	require.NoError(t, err)

	last := f.LastIndex()
	assert.Equal(t, contracts.AlignBull, f.AlignmentAt(last))

	// MA1=13, MA2=12.5 -> density 4%.
	d, ok := f.DensityAt(last)
	require.True(t, ok)
	assert.InDelta(t, 0.5/12.5, d, 1e-12)

	// Flat closes collapse the averages: zero density, mixed stacking.
	flat, err := eng.Compute(mkSeries(t, "TEST.FLAT", constant(5, 10)))
	require.NoError(t, err)
	d, ok = flat.DensityAt(flat.LastIndex())
	require.True(t, ok)
	assert.Zero(t, d)
	assert.Equal(t, contracts.AlignMixed, flat.AlignmentAt(flat.LastIndex()))
}

func TestEngine_VolumeRatio(t *testing.T) {
	cfg := Config{Windows: []int{2}, SlopeLookback: 1, AnnualDays: 252, ATRWindow: 2, VolumeWindow: 3}
	eng := NewEngine(cfg)

	series := mkSeries(t, "TEST.VOL", constant(6, 10))
	series.Bars[5].Volume = 3000 // spike over the constant 1000 baseline

	f, err := eng.Compute(series)
	require.NoError(t, err)

	r, ok := f.VolRatioAt(5)
	require.True(t, ok)
	// Trailing 3-bar average is (1000+1000+3000)/3.
	assert.InDelta(t, 3000.0/(5000.0/3.0), r, 1e-9)
}

func TestEngine_DoesNotMutateInput(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	closes := constant(150, 10)
	series := mkSeries(t, "TEST.PURE", closes)
	before := series.Closes()

	_, err := eng.Compute(series)
	require.NoError(t, err)
	assert.Equal(t, before, series.Closes())
}

func TestTrailing(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}

	got, ok := Trailing(vals, 4, 3)
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4, 5}, got)

	_, ok = Trailing(vals, 1, 3)
	assert.False(t, ok, "window reaching past the start must be rejected")
	_, ok = Trailing(vals, 5, 2)
	assert.False(t, ok, "index past the end must be rejected")
}
