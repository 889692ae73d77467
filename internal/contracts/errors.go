package contracts

import "errors"

// Error taxonomy shared by every analysis component.
//
// Both sentinels are recoverable: the batch analyzer converts them into
// skip entries instead of aborting the run. Configuration errors are a
// different animal and live in internal/analysiscfg (they are fatal and
// surface at construction time).
var (
	// ErrInsufficientData means the series is shorter than the lookback a
	// computation requires. Callers wrap it with the concrete need/have
	// counts via fmt.Errorf("...: %w", ErrInsufficientData).
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMalformedSeries means the input bars violate the series contract
	// (non-monotonic dates, duplicate dates, non-finite fields).
	ErrMalformedSeries = errors.New("malformed series")
)
