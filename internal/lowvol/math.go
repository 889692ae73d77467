package lowvol

import (
	"math"
	"sort"
)

// lastN returns the trailing n elements, or the whole slice when it is
// shorter.
func lastN(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

// pctChanges returns day-over-day simple returns. A zero previous close
// yields a zero return rather than an infinity.
func pctChanges(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			out[i-1] = prices[i]/prices[i-1] - 1
		}
	}
	return out
}

// mean returns the arithmetic mean, NaN for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd returns the sample standard deviation (n-1 denominator),
// zero when fewer than two observations.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// quantile returns the q-th quantile (0..1) using linear interpolation
// between sorted order statistics.
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// annualizedVolatility is the sample deviation of daily returns over
// the window, annualized and expressed as a percent.
func annualizedVolatility(prices []float64) float64 {
	return sampleStd(pctChanges(prices)) * math.Sqrt(tradingDaysPerYear) * 100
}

// sharpeRatio annualizes the return series against the risk-free rate.
// NaN when the series is empty or has no spread.
func sharpeRatio(returns []float64, riskFree float64) float64 {
	std := sampleStd(returns)
	if len(returns) == 0 || std == 0 {
		return math.NaN()
	}
	annualReturn := mean(returns) * tradingDaysPerYear
	annualVol := std * math.Sqrt(tradingDaysPerYear)
	return (annualReturn - riskFree) / annualVol
}

// maxDrawdown is the deepest peak-to-trough decline over the window,
// as a positive percent.
func maxDrawdown(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	peak := prices[0]
	var worst float64
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			dd := (p - peak) / peak * 100
			if dd < worst {
				worst = dd
			}
		}
	}
	return math.Abs(worst)
}
