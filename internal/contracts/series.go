package contracts

import (
	"fmt"
	"math"
	"time"
)

// Bar is a single daily OHLCV record.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Amount float64   `json:"amount"`
}

// Series is an ordered daily price series for one symbol.
// ⭐ SSOT: the only representation of raw price history inside the engine.
//
// The series is owned by the caller; analysis components never mutate it,
// they produce derived frames instead.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// NewSeries validates bars and returns a Series. Bars must be strictly
// increasing by date with no duplicates, and every numeric field must be
// finite with high >= low. Violations return ErrMalformedSeries.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	for i, b := range bars {
		if !finiteBar(b) {
			return nil, fmt.Errorf("%w: non-finite field at bar %d (%s)", ErrMalformedSeries, i, b.Date.Format("2006-01-02"))
		}
		if b.High < b.Low {
			return nil, fmt.Errorf("%w: high < low at bar %d (%s)", ErrMalformedSeries, i, b.Date.Format("2006-01-02"))
		}
		if i == 0 {
			continue
		}
		prev := bars[i-1].Date
		if b.Date.Equal(prev) {
			return nil, fmt.Errorf("%w: duplicate date %s", ErrMalformedSeries, b.Date.Format("2006-01-02"))
		}
		if b.Date.Before(prev) {
			return nil, fmt.Errorf("%w: dates not increasing at bar %d (%s)", ErrMalformedSeries, i, b.Date.Format("2006-01-02"))
		}
	}
	return &Series{Symbol: symbol, Bars: bars}, nil
}

func finiteBar(b Bar) bool {
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume, b.Amount} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Len returns the number of bars.
func (s *Series) Len() int {
	return len(s.Bars)
}

// Last returns the most recent bar. Panics on an empty series; callers
// gate on Len first.
func (s *Series) Last() Bar {
	return s.Bars[len(s.Bars)-1]
}

// LastClose returns the most recent closing price.
func (s *Series) LastClose() float64 {
	return s.Last().Close
}

// Closes returns closing prices in date order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns volumes in date order.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Amounts returns trading amounts in date order.
func (s *Series) Amounts() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Amount
	}
	return out
}
