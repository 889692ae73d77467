package contracts

// TrendType is the trend regime assigned to a security.
// Exactly one regime is assigned per evaluation; the classifier is total.
type TrendType string

const (
	// TrendDense: moving averages converged, price consolidating.
	TrendDense TrendType = "dense"
	// TrendStableUp: bullish alignment with a moderate annualized slope.
	TrendStableUp TrendType = "stable_up"
	// TrendAccelerateUp: bullish alignment with slope past the accelerate
	// threshold. Hold territory, not entry territory.
	TrendAccelerateUp TrendType = "accelerate_up"
	// TrendStableDown / TrendAccelerateDown mirror the up regimes.
	TrendStableDown     TrendType = "stable_down"
	TrendAccelerateDown TrendType = "accelerate_down"
	// TrendMixedNoTrend: not consolidating and no slope rule matched.
	// Deliberately distinct from TrendDense so consolidation is never
	// conflated with plain trendlessness.
	TrendMixedNoTrend TrendType = "mixed_no_trend"
)

// TrendPhase locates where inside a trend the slope currently sits.
type TrendPhase string

const (
	PhaseTurning TrendPhase = "turning"
	PhaseStart   TrendPhase = "start"
	PhaseDevelop TrendPhase = "develop"
	PhaseExtreme TrendPhase = "extreme"
	PhaseUnknown TrendPhase = "unknown"
)

// Alignment is the relative stacking of the moving averages.
type Alignment string

const (
	AlignBull  Alignment = "bull"
	AlignBear  Alignment = "bear"
	AlignMixed Alignment = "mixed"
)

// TurnPrediction is the one-step moving-average turning projection for a
// single window: the average turns up tomorrow iff tomorrow's close beats
// the discount price (the close that drops out of the trailing window).
type TurnPrediction struct {
	Window        int     `json:"window"`
	CanTurnUp     bool    `json:"can_turn_up"`
	CanTurnDown   bool    `json:"can_turn_down"`
	DiscountPrice float64 `json:"discount_price"`
	CurrentPrice  float64 `json:"current_price"`
}

// DenseZone is a contiguous run of bars whose MA density stayed below the
// dense threshold. Historic zones act as support/resistance.
type DenseZone struct {
	StartIdx    int     `json:"start_idx"`
	EndIdx      int     `json:"end_idx"`
	MeanDensity float64 `json:"mean_density"`
	Center      float64 `json:"center"` // mid-window MA at the zone end
}

// Target is one upside price objective.
type Target struct {
	Level   int     `json:"level"`
	Price   float64 `json:"price"`
	GainPct float64 `json:"gain_pct"`
	Source  string  `json:"source"` // "dense_zone" or "atr"
}

// StopLoss is the protective exit level.
type StopLoss struct {
	Price float64 `json:"price"`
	Pct   float64 `json:"pct"`
	Basis string  `json:"basis"` // "fixed_pct" or "ma<window>"
}

// TrendInfo is the full trend-classification result for one security at
// its most recent bar. Recomputed on every run, never persisted as state.
type TrendInfo struct {
	Symbol       string                 `json:"symbol"`
	TrendType    TrendType              `json:"trend_type"`
	Phase        TrendPhase             `json:"trend_phase"`
	Alignment    Alignment              `json:"ma_alignment"`
	Density      float64                `json:"ma_density"`
	Slope        float64                `json:"slope"` // annualized, shortest window
	Bias         map[int]float64        `json:"bias"`  // window -> deviation ratio
	Turning      map[int]TurnPrediction `json:"turning_predictions"`
	DenseZones   []DenseZone            `json:"dense_zones"`
	Targets      []Target               `json:"targets"`
	StopLoss     StopLoss               `json:"stop_loss"`
	CurrentPrice float64                `json:"current_price"`
}

// Bullish reports whether the regime is one of the two up regimes.
func (t *TrendInfo) Bullish() bool {
	return t.TrendType == TrendStableUp || t.TrendType == TrendAccelerateUp
}
