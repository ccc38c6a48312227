package domain

import (
	"fmt"
	"strings"
)

// SignalType is the trading decision for a single evaluation.
// This is the single serialization boundary for signal values: parsing
// accepts any case ("buy", "BUY", "Buy"), output is always upper-case.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// ParseSignalType normalizes a raw signal string into a SignalType.
func ParseSignalType(raw string) (SignalType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY":
		return SignalBuy, nil
	case "SELL":
		return SignalSell, nil
	case "HOLD":
		return SignalHold, nil
	default:
		return "", fmt.Errorf("%w: unknown signal type %q", ErrInvalidInput, raw)
	}
}

// IsActionable reports whether the signal opens or closes a position.
func (s SignalType) IsActionable() bool {
	return s == SignalBuy || s == SignalSell
}

// Confidence bounds enforced on every SignalResult.
const (
	MinConfidence = 0.1
	MaxConfidence = 0.9
)

// ClampConfidence bounds a confidence value to [MinConfidence, MaxConfidence].
func ClampConfidence(c float64) float64 {
	if c < MinConfidence {
		return MinConfidence
	}
	if c > MaxConfidence {
		return MaxConfidence
	}
	return c
}
