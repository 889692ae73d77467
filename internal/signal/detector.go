package signal

import (
	"fmt"
	"math"

	"github.com/RylynnLai/trading-tips/internal/contracts"
	"github.com/RylynnLai/trading-tips/internal/indicator"
)

// Config holds the detector tolerances. Ratios are fractions
// (0.03 = 3%), windows and lookbacks are bar counts.
type Config struct {
	DenseThreshold float64 // density qualifying a breakout base
	DenseLookback  int     // bars back the base may have formed
	AlignWindow    int     // bars back a fresh alignment may have formed
	VolumeMultiple float64 // volume ratio confirming a breakout

	PullbackBand float64 // distance band around a moving average

	Prominence       float64 // minimum relative prominence of a swing point
	Separation       int     // minimum bars between same-kind swing points
	ReversalLookback int     // scan range for the 2B prior extreme
	RecoveryWindow   int     // bars allowed between breach and recovery
	ReversalTol      float64 // breach/recovery margin around the extreme

	StructureLookback  int     // scan range for double top/bottom pairs
	StructureTolerance float64 // price match band between paired extremes
	MinStructureBars   int     // series length below which detection refuses
}

// DefaultConfig returns the standard daily-bar tolerances.
func DefaultConfig() Config {
	return Config{
		DenseThreshold: 0.05,
		DenseLookback:  10,
		AlignWindow:    5,
		VolumeMultiple: 1.5,

		PullbackBand: 0.03,

		Prominence:       0.02,
		Separation:       5,
		ReversalLookback: 60,
		RecoveryWindow:   10,
		ReversalTol:      0.01,

		StructureLookback:  30,
		StructureTolerance: 0.03,
		MinStructureBars:   60,
	}
}

// strength weighting for the breakout signal: price clearance over
// MA(shortest) dominates, volume excess seconds it.
const (
	clearanceWeight = 0.6
	clearanceNorm   = 0.05
	volumeWeight    = 0.4
	volumeNorm      = 2.0
)

// Detector finds tradeable events on an indicator frame. Pure: no I/O,
// no state between calls.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector. Tolerances are validated upstream by
// analysiscfg.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect evaluates the frame at its latest bar and returns the full
// signal set. An all-false set is a valid result; only a series too
// short for structure scanning is an error.
func (d *Detector) Detect(f *indicator.Frame) (*contracts.SignalSet, error) {
	n := f.Series.Len()
	if n < d.cfg.MinStructureBars {
		return nil, fmt.Errorf("%w: structure scan needs %d bars, have %d",
			contracts.ErrInsufficientData, d.cfg.MinStructureBars, n)
	}

	closes := f.Series.Closes()
	set := &contracts.SignalSet{Symbol: f.Series.Symbol}
	set.Breakout = d.detectBreakout(f)
	set.Pullback = d.detectPullback(f)
	set.Reversal = contracts.ReversalSignal{
		Bullish: d.detect2B(closes, Trough),
		Bearish: d.detect2B(closes, Peak),
	}
	set.Structure = d.detectStructure(closes)
	return set, nil
}

// detectBreakout looks for a fresh bullish alignment escaping a recent
// density base on volume.
func (d *Detector) detectBreakout(f *indicator.Frame) contracts.BreakoutSignal {
	last := f.LastIndex()
	var sig contracts.BreakoutSignal

	if density, ok := f.DensityAt(last); ok {
		sig.MADensity = density
	} else {
		sig.MADensity = math.NaN()
	}

	for i := last; i >= 0 && i > last-d.cfg.DenseLookback; i-- {
		if density, ok := f.DensityAt(i); ok && density < d.cfg.DenseThreshold {
			sig.DenseRecent = true
			break
		}
	}

	if f.AlignmentAt(last) == contracts.AlignBull {
		for i := last - 1; i >= 0 && i >= last-d.cfg.AlignWindow; i-- {
			if f.AlignmentAt(i) != contracts.AlignBull {
				sig.FreshAlignment = true
				break
			}
		}
	}

	price := f.Series.LastClose()
	clearance := 0.0
	if ma, ok := f.MAAt(f.Shortest(), last); ok && ma > 0 {
		sig.PriceAboveMA = price > ma
		clearance = (price - ma) / ma
	}

	volExcess := 0.0
	if ratio, ok := f.VolRatioAt(last); ok {
		sig.VolumeConfirmed = ratio > d.cfg.VolumeMultiple
		volExcess = ratio - 1
	}

	sig.HasSignal = sig.DenseRecent && sig.FreshAlignment &&
		sig.PriceAboveMA && sig.VolumeConfirmed
	sig.Strength = clamp01(clearanceWeight*clamp01(clearance/clearanceNorm) +
		volumeWeight*clamp01(volExcess/volumeNorm))
	return sig
}

// detectPullback looks for price retracing onto one of the averages
// inside a fully bullish stacking. When more than one average sits in
// the band at the same distance, the longer window wins: reclaiming a
// slower average is structurally more significant.
func (d *Detector) detectPullback(f *indicator.Frame) contracts.PullbackSignal {
	last := f.LastIndex()
	var sig contracts.PullbackSignal

	if f.AlignmentAt(last) != contracts.AlignBull {
		return sig
	}

	price := f.Series.LastClose()
	best := -1
	bestDist := math.Inf(1)
	for _, w := range f.Windows {
		ma, ok := f.MAAt(w, last)
		if !ok || ma <= 0 {
			continue
		}
		dist := math.Abs(price-ma) / ma
		if dist < d.cfg.PullbackBand && dist <= bestDist {
			best = w
			bestDist = dist
		}
	}
	if best < 0 {
		return sig
	}

	sig.HasSignal = true
	sig.PullbackTo = best
	sig.Distance = bestDist
	sig.IsFirstPullback = d.isFirstPullback(f, best, last)
	if dp, ok := f.DiscountAt(best, last); ok {
		sig.DiscountSafe = price > dp
	}
	return sig
}

// isFirstPullback reports whether no earlier bar since the current
// bullish stacking formed has already touched the band of window w.
func (d *Detector) isFirstPullback(f *indicator.Frame, w, last int) bool {
	start := last
	for start > 0 && f.AlignmentAt(start-1) == contracts.AlignBull {
		start--
	}

	closes := f.Series.Closes()
	for i := start; i < last; i++ {
		ma, ok := f.MAAt(w, i)
		if !ok || ma <= 0 {
			continue
		}
		if math.Abs(closes[i]-ma)/ma < d.cfg.PullbackBand {
			return false
		}
	}
	return true
}

// detect2B scans for the most recent confirmed 2B against a prior swing
// extreme: price breaches the extreme, then recovers back across it
// within the recovery window, and the latest close still holds the
// recovered side. Indices are absolute series positions.
func (d *Detector) detect2B(closes []float64, kind ExtremumKind) contracts.TwoB {
	var out contracts.TwoB

	n := len(closes)
	offset := n - d.cfg.ReversalLookback
	if offset < 0 {
		offset = 0
	}
	window := closes[offset:]
	current := closes[n-1]

	extrema := scanExtrema(window, d.cfg.Prominence, d.cfg.Separation)
	for e := len(extrema) - 1; e >= 0; e-- {
		ext := extrema[e]
		if ext.Kind != kind {
			continue
		}

		breach := -1
		for j := ext.Index + 1; j < len(window); j++ {
			if breached(window[j], ext.Price, kind, d.cfg.ReversalTol) {
				breach = j
				break
			}
		}
		if breach < 0 {
			continue
		}

		for j := breach + 1; j < len(window) && j <= breach+d.cfg.RecoveryWindow; j++ {
			if !recovered(window[j], ext.Price, kind, d.cfg.ReversalTol) {
				continue
			}
			if !recovered(current, ext.Price, kind, d.cfg.ReversalTol) {
				break
			}
			out.Found = true
			out.PriorExtremeIdx = offset + ext.Index
			out.BreachIdx = offset + breach
			out.RecoveryIdx = offset + j
			out.PriorExtreme = ext.Price
			return out
		}
	}
	return out
}

func breached(price, extreme float64, kind ExtremumKind, tol float64) bool {
	if kind == Trough {
		return price < extreme*(1-tol)
	}
	return price > extreme*(1+tol)
}

func recovered(price, extreme float64, kind ExtremumKind, tol float64) bool {
	if kind == Trough {
		return price > extreme*(1+tol)
	}
	return price < extreme*(1-tol)
}

// detectStructure looks for double-top and double-bottom pairs: the two
// most recent same-kind extremes matching in price, separated by a pivot
// that moved far enough to make the pattern real.
func (d *Detector) detectStructure(closes []float64) contracts.StructureSignal {
	var sig contracts.StructureSignal

	n := len(closes)
	offset := n - d.cfg.StructureLookback
	if offset < 0 {
		offset = 0
	}
	window := closes[offset:]
	extrema := scanExtrema(window, d.cfg.Prominence, d.cfg.Separation)

	sig.DoubleTop = d.matchPair(window, extrema, Peak, offset)
	sig.DoubleBottom = d.matchPair(window, extrema, Trough, offset)
	return sig
}

func (d *Detector) matchPair(window []float64, extrema []Extremum, kind ExtremumKind, offset int) contracts.StructureMatch {
	var match contracts.StructureMatch

	var pair []Extremum
	for e := len(extrema) - 1; e >= 0 && len(pair) < 2; e-- {
		if extrema[e].Kind == kind {
			pair = append(pair, extrema[e])
		}
	}
	if len(pair) < 2 {
		return match
	}
	second, first := pair[0], pair[1]

	if math.Abs(first.Price-second.Price)/first.Price >= d.cfg.StructureTolerance {
		return match
	}

	// Pivot between the pair, on the opposite side.
	pivot := window[first.Index]
	for i := first.Index; i <= second.Index; i++ {
		if (kind == Peak && window[i] < pivot) || (kind == Trough && window[i] > pivot) {
			pivot = window[i]
		}
	}
	swing := math.Abs(first.Price-pivot) / first.Price
	if swing <= d.cfg.StructureTolerance {
		return match
	}

	match.Found = true
	match.FirstIdx = offset + first.Index
	match.SecondIdx = offset + second.Index
	match.FirstPrice = first.Price
	match.SecondPrice = second.Price
	match.PivotPrice = pivot
	return match
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
