package contracts

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBars(n int) []Bar {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, n)
	for i := range bars {
		close := 100 + float64(i)
		bars[i] = Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   close - 0.5,
			High:   close + 1,
			Low:    close - 1,
			Close:  close,
			Volume: 1000,
			Amount: close * 1000,
		}
	}
	return bars
}

func TestNewSeries(t *testing.T) {
	s, err := NewSeries("005930", validBars(5))
	require.NoError(t, err)

	assert.Equal(t, "005930", s.Symbol)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 104.0, s.LastClose())
	assert.Equal(t, []float64{100, 101, 102, 103, 104}, s.Closes())
	assert.Equal(t, []float64{1000, 1000, 1000, 1000, 1000}, s.Volumes())
}

func TestNewSeriesEmpty(t *testing.T) {
	s, err := NewSeries("005930", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestNewSeriesRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]Bar)
	}{
		{"duplicate date", func(bars []Bar) { bars[2].Date = bars[1].Date }},
		{"dates not increasing", func(bars []Bar) { bars[3].Date = bars[0].Date }},
		{"high below low", func(bars []Bar) { bars[1].High = bars[1].Low - 1 }},
		{"NaN close", func(bars []Bar) { bars[4].Close = math.NaN() }},
		{"infinite volume", func(bars []Bar) { bars[0].Volume = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := validBars(5)
			tt.mutate(bars)

			_, err := NewSeries("005930", bars)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSeries))
		})
	}
}
