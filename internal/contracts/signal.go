package contracts

// SignalSet carries every detected tradeable event for one security at
// its latest bar. An all-false set is a valid result, not an error.
type SignalSet struct {
	Symbol    string          `json:"symbol"`
	Breakout  BreakoutSignal  `json:"breakout"`
	Pullback  PullbackSignal  `json:"pullback"`
	Reversal  ReversalSignal  `json:"reversal_2b"`
	Structure StructureSignal `json:"top_bottom_structure"`
}

// BreakoutSignal marks a breakout from a moving-average density zone.
type BreakoutSignal struct {
	HasSignal       bool    `json:"has_signal"`
	Strength        float64 `json:"strength"` // [0,1]
	MADensity       float64 `json:"ma_density"`
	DenseRecent     bool    `json:"dense_recent"` // density qualified within the lookback
	VolumeConfirmed bool    `json:"volume_confirmed"`
	FreshAlignment  bool    `json:"fresh_alignment"`
	PriceAboveMA    bool    `json:"price_above_ma"`
}

// PullbackSignal marks a retrace onto one of the configured moving
// averages inside a fully bullish alignment.
type PullbackSignal struct {
	HasSignal       bool    `json:"has_signal"`
	PullbackTo      int     `json:"pullback_to"` // window, 0 when no signal
	Distance        float64 `json:"distance"`    // |close-MA|/MA
	IsFirstPullback bool    `json:"is_first_pullback"`
	DiscountSafe    bool    `json:"discount_safe"`
}

// TwoB is one confirmed 2B structure: a breach of a prior extreme
// followed by a recovery back across it within the recovery window.
type TwoB struct {
	Found           bool    `json:"found"`
	PriorExtremeIdx int     `json:"prior_extreme_idx"`
	BreachIdx       int     `json:"breach_idx"`
	RecoveryIdx     int     `json:"recovery_idx"`
	PriorExtreme    float64 `json:"prior_extreme"`
}

// ReversalSignal holds the bullish (false breakdown) and bearish (false
// breakout) 2B detections. Short-horizon only; never overrides the trend
// regime.
type ReversalSignal struct {
	Bullish TwoB `json:"bullish"`
	Bearish TwoB `json:"bearish"`
}

// StructureMatch is one double-top or double-bottom detection.
type StructureMatch struct {
	Found       bool    `json:"found"`
	FirstIdx    int     `json:"first_idx"`
	SecondIdx   int     `json:"second_idx"`
	FirstPrice  float64 `json:"first_price"`
	SecondPrice float64 `json:"second_price"`
	PivotPrice  float64 `json:"pivot_price"` // extreme between the pair
}

// StructureSignal holds top/bottom structure detections.
type StructureSignal struct {
	DoubleTop    StructureMatch `json:"double_top"`
	DoubleBottom StructureMatch `json:"double_bottom"`
}

// Any reports whether at least one signal fired.
func (s *SignalSet) Any() bool {
	return s.Breakout.HasSignal ||
		s.Pullback.HasSignal ||
		s.Reversal.Bullish.Found || s.Reversal.Bearish.Found ||
		s.Structure.DoubleTop.Found || s.Structure.DoubleBottom.Found
}
