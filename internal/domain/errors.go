package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the signal engine.
//
// InsufficientData is an expected, frequent condition: callers get
// conservative defaults (HOLD, RANGE_BOUND, non-bouncing) instead of an
// error wherever graceful degradation is documented. InvalidInput and
// ConfigurationError always fail fast and propagate.
var (
	// ErrInsufficientData indicates fewer bars or indicator values than the
	// minimum required for a calculation.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidInput indicates NaN, missing, or out-of-domain input values.
	// Silent coercion to defaults is disallowed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates a malformed SignalConfig. Detected once at
	// construction, never per evaluation.
	ErrConfiguration = errors.New("invalid configuration")
)

// InvalidInputError wraps ErrInvalidInput with the offending field and value.
func InvalidInputError(field string, value float64) error {
	return fmt.Errorf("%w: %s=%v", ErrInvalidInput, field, value)
}

// InsufficientDataError wraps ErrInsufficientData with the required and
// actual counts.
func InsufficientDataError(what string, need, have int) error {
	return fmt.Errorf("%w: %s requires %d bars, have %d", ErrInsufficientData, what, need, have)
}
