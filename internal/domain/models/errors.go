package models

import "errors"

// Pipeline failure taxonomy. All of these are recoverable at the pipeline
// boundary: callers surface them as "try again later" instead of crashing.
var (
	// ErrDataUnavailable means the upstream market-data fetch returned nothing
	// or too few candles. The pipeline does not retry; the caller may.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrInsufficientData means enough raw candles were fetched but too few
	// clean feature rows survived indicator window trimming.
	ErrInsufficientData = errors.New("insufficient data for training")

	// ErrFeatureMismatch means a stored model's feature columns do not match
	// the currently computed ones. Forces a retrain.
	ErrFeatureMismatch = errors.New("feature columns mismatch")

	// ErrModelUnavailable means the artifact files are missing or corrupt.
	// Triggers a transparent retrain when feasible.
	ErrModelUnavailable = errors.New("model artifact unavailable")
)
