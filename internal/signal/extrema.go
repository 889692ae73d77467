// Package signal detects discrete tradeable events on a price series:
// density breakouts, pullbacks onto moving averages, 2B reversals, and
// double top/bottom structures.
package signal

// ExtremumKind tags a detected swing point.
type ExtremumKind int

const (
	Peak ExtremumKind = iota
	Trough
)

// Extremum is one local swing point of a price slice.
type Extremum struct {
	Index int
	Price float64
	Kind  ExtremumKind
}

// scanExtrema finds local maxima and minima with a minimum relative
// prominence and a minimum index distance between same-kind extrema.
// Prominence is measured against the higher of the two valley floors
// (or lower of the two ridge caps, for troughs) flanking the candidate,
// walking outward until a more extreme price cuts the search off.
//
// Small wiggles on a noisy series fail the prominence filter; a crowded
// cluster keeps only its most extreme member.
func scanExtrema(prices []float64, prominence float64, separation int) []Extremum {
	var out []Extremum
	if separation < 1 {
		separation = 1
	}

	for i := 1; i < len(prices)-1; i++ {
		switch {
		case prices[i] > prices[i-1] && prices[i] > prices[i+1]:
			if peakProminence(prices, i) >= prominence {
				out = appendSeparated(out, Extremum{Index: i, Price: prices[i], Kind: Peak}, separation)
			}
		case prices[i] < prices[i-1] && prices[i] < prices[i+1]:
			if troughProminence(prices, i) >= prominence {
				out = appendSeparated(out, Extremum{Index: i, Price: prices[i], Kind: Trough}, separation)
			}
		}
	}
	return out
}

// appendSeparated enforces the distance filter: a new extremum closer
// than separation to the last accepted one of the same kind replaces it
// only when more extreme.
func appendSeparated(acc []Extremum, e Extremum, separation int) []Extremum {
	for j := len(acc) - 1; j >= 0; j-- {
		prev := acc[j]
		if prev.Kind != e.Kind {
			continue
		}
		if e.Index-prev.Index >= separation {
			break
		}
		better := (e.Kind == Peak && e.Price > prev.Price) ||
			(e.Kind == Trough && e.Price < prev.Price)
		if !better {
			return acc
		}
		acc = append(acc[:j], acc[j+1:]...)
		break
	}
	return append(acc, e)
}

func peakProminence(prices []float64, i int) float64 {
	peak := prices[i]
	leftFloor := peak
	for j := i - 1; j >= 0 && prices[j] <= peak; j-- {
		if prices[j] < leftFloor {
			leftFloor = prices[j]
		}
	}
	rightFloor := peak
	for j := i + 1; j < len(prices) && prices[j] <= peak; j++ {
		if prices[j] < rightFloor {
			rightFloor = prices[j]
		}
	}
	floor := leftFloor
	if rightFloor > floor {
		floor = rightFloor
	}
	if floor <= 0 {
		return 0
	}
	return (peak - floor) / floor
}

func troughProminence(prices []float64, i int) float64 {
	trough := prices[i]
	if trough <= 0 {
		return 0
	}
	leftCap := trough
	for j := i - 1; j >= 0 && prices[j] >= trough; j-- {
		if prices[j] > leftCap {
			leftCap = prices[j]
		}
	}
	rightCap := trough
	for j := i + 1; j < len(prices) && prices[j] >= trough; j++ {
		if prices[j] > rightCap {
			rightCap = prices[j]
		}
	}
	ceiling := leftCap
	if rightCap < ceiling {
		ceiling = rightCap
	}
	return (ceiling - trough) / trough
}
