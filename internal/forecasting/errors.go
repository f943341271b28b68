package forecasting

import "errors"

// Engine contract errors. Callers distinguish them with errors.Is; the HTTP
// layer maps them onto the application error taxonomy.
var (
	// ErrInvalidHorizon means the requested horizon is outside [1, 30] days
	ErrInvalidHorizon = errors.New("forecast horizon must be between 1 and 30 days")

	// ErrInsufficientHistory means fewer than MinHistory records exist.
	// Predictions from fewer points are invalid, not merely low-confidence.
	ErrInsufficientHistory = errors.New("at least 14 daily records are required to fit a forecast")

	// ErrEmptyForecast means a recommendation was requested on an empty series
	ErrEmptyForecast = errors.New("forecast series is empty")

	// ErrZeroCapacity means utilization cannot be computed for a facility
	// with zero total beds
	ErrZeroCapacity = errors.New("facility has zero total beds")

	// ErrModelFit means model training failed and the fallback could not
	// produce a usable forecast either
	ErrModelFit = errors.New("model fitting failed")
)
