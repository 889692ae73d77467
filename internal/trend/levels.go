package trend

import (
	"fmt"
	"sort"

	"github.com/RylynnLai/trading-tips/internal/contracts"
	"github.com/RylynnLai/trading-tips/internal/indicator"
)

// denseZones collects the contiguous runs, up to the latest bar, where
// density stayed below the dense threshold for at least MinZoneBars.
// Historic zones act as support and resistance, so runs are reported
// oldest first with the mid-window MA at the run end as the zone price.
func (c *Classifier) denseZones(f *indicator.Frame, last int) []contracts.DenseZone {
	var zones []contracts.DenseZone
	runStart := -1

	flush := func(end int) {
		if runStart < 0 || end-runStart+1 < c.cfg.MinZoneBars {
			runStart = -1
			return
		}
		var sum float64
		for i := runStart; i <= end; i++ {
			sum += f.Density[i]
		}
		zone := contracts.DenseZone{
			StartIdx:    runStart,
			EndIdx:      end,
			MeanDensity: sum / float64(end-runStart+1),
		}
		if center, ok := f.MAAt(f.Mid(), end); ok {
			zone.Center = center
		}
		zones = append(zones, zone)
		runStart = -1
	}

	for i := 0; i <= last; i++ {
		d, ok := f.DensityAt(i)
		if ok && d < c.cfg.DenseThreshold {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i - 1)
	}
	flush(last)

	return zones
}

// targets derives upside objectives: dense-zone prices above the
// current price first, padded with ATR steps when history offers fewer
// zones than levels. Ordered by ascending gain, level 1 nearest.
func (c *Classifier) targets(f *indicator.Frame, zones []contracts.DenseZone, price float64, last int) []contracts.Target {
	if price <= 0 || c.cfg.MaxTargets <= 0 {
		return nil
	}

	var targets []contracts.Target
	for _, z := range zones {
		if z.Center > price {
			targets = append(targets, contracts.Target{
				Price:   z.Center,
				GainPct: (z.Center - price) / price * 100,
				Source:  "dense_zone",
			})
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Price < targets[j].Price })
	if len(targets) > c.cfg.MaxTargets {
		targets = targets[:c.cfg.MaxTargets]
	}

	if atr, ok := f.ATRAt(last); ok && atr > 0 {
		step := c.cfg.ATRMultiple * atr
		next := price + step
		for len(targets) < c.cfg.MaxTargets {
			if len(targets) > 0 && next <= targets[len(targets)-1].Price {
				next = targets[len(targets)-1].Price + step
			}
			targets = append(targets, contracts.Target{
				Price:   next,
				GainPct: (next - price) / price * 100,
				Source:  "atr",
			})
			next += step
		}
	}

	for i := range targets {
		targets[i].Level = i + 1
	}
	return targets
}

// stopLoss picks the tighter of the fixed-percentage stop and the
// nearest moving average on the protective side of price. Tighter wins:
// it risks less while still sitting on trend structure.
func (c *Classifier) stopLoss(f *indicator.Frame, price float64, align contracts.Alignment, last int) contracts.StopLoss {
	bearish := align == contracts.AlignBear

	stop := contracts.StopLoss{Basis: "fixed_pct"}
	if bearish {
		stop.Price = price * (1 + c.cfg.StopLossPct)
	} else {
		stop.Price = price * (1 - c.cfg.StopLossPct)
	}

	for _, w := range f.Windows {
		ma, ok := f.MAAt(w, last)
		if !ok {
			continue
		}
		if bearish {
			if ma > price && ma < stop.Price {
				stop.Price = ma
				stop.Basis = fmt.Sprintf("ma%d", w)
			}
		} else {
			if ma < price && ma > stop.Price {
				stop.Price = ma
				stop.Basis = fmt.Sprintf("ma%d", w)
			}
		}
	}

	if price > 0 {
		if bearish {
			stop.Pct = (stop.Price - price) / price * 100
		} else {
			stop.Pct = (price - stop.Price) / price * 100
		}
	}
	return stop
}
