package indicator

import (
	"math"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

// Frame is a price series augmented with derived indicator columns.
// Columns are aligned index-for-index with the bars; positions where a
// window has not filled yet hold NaN, never zero. All columns are
// computed from closed bars only.
type Frame struct {
	Series  *contracts.Series
	Windows []int // ascending, validated by the caller

	MA       map[int][]float64 // simple moving average per window
	EMA      map[int][]float64 // exponential moving average per window
	Discount map[int][]float64 // close that exits the window next bar
	Bias     map[int][]float64 // (close-MA)/MA per window
	Slope    map[int][]float64 // annualized MA slope per window

	Density   []float64             // (maxMA-minMA)/minMA across windows
	Alignment []contracts.Alignment // bull/bear/mixed stacking
	ATR       []float64             // average true range
	VolRatio  []float64             // volume / trailing volume average
}

// Defined reports whether a column value is usable at an index.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// LastIndex returns the index of the most recent bar.
func (f *Frame) LastIndex() int {
	return f.Series.Len() - 1
}

// Shortest returns the shortest configured window.
func (f *Frame) Shortest() int {
	return f.Windows[0]
}

// Mid returns the middle configured window.
func (f *Frame) Mid() int {
	return f.Windows[len(f.Windows)/2]
}

// Longest returns the longest configured window.
func (f *Frame) Longest() int {
	return f.Windows[len(f.Windows)-1]
}

// MAAt returns MA(w) at index i with an explicit defined flag.
func (f *Frame) MAAt(w, i int) (float64, bool) {
	return at(f.MA[w], i)
}

// DiscountAt returns the discount price for window w at index i.
func (f *Frame) DiscountAt(w, i int) (float64, bool) {
	return at(f.Discount[w], i)
}

// BiasAt returns the deviation ratio for window w at index i.
func (f *Frame) BiasAt(w, i int) (float64, bool) {
	return at(f.Bias[w], i)
}

// SlopeAt returns the annualized MA slope for window w at index i.
func (f *Frame) SlopeAt(w, i int) (float64, bool) {
	return at(f.Slope[w], i)
}

// DensityAt returns the cross-window density at index i.
func (f *Frame) DensityAt(i int) (float64, bool) {
	return at(f.Density, i)
}

// AlignmentAt returns the MA stacking at index i. Indexes before the
// longest window has filled report mixed.
func (f *Frame) AlignmentAt(i int) contracts.Alignment {
	if i < 0 || i >= len(f.Alignment) {
		return contracts.AlignMixed
	}
	return f.Alignment[i]
}

// ATRAt returns the average true range at index i.
func (f *Frame) ATRAt(i int) (float64, bool) {
	return at(f.ATR, i)
}

// VolRatioAt returns the volume ratio at index i.
func (f *Frame) VolRatioAt(i int) (float64, bool) {
	return at(f.VolRatio, i)
}

func at(col []float64, i int) (float64, bool) {
	if i < 0 || i >= len(col) {
		return math.NaN(), false
	}
	v := col[i]
	return v, Defined(v)
}

// Trailing returns the k values ending at index i, or false when the
// window would reach past the start of the column. The explicit bounds
// check is what keeps off-by-one window errors from degenerating into
// silent NaN propagation.
func Trailing(values []float64, i, k int) ([]float64, bool) {
	if k <= 0 || i+1 < k || i >= len(values) {
		return nil, false
	}
	return values[i+1-k : i+1], true
}
