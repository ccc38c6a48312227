package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateEMA calculates the Exponential Moving Average
//
// EMA Formula:
//
//	EMA_today = (Price_today × multiplier) + (EMA_yesterday × (1 - multiplier))
//	where multiplier = 2 / (period + 1)
//
// Returns the current EMA value or nil if insufficient data.
func CalculateEMA(closes []float64, length int) *float64 {
	if len(closes) == 0 {
		return nil
	}

	// If not enough data for proper EMA, fallback to SMA
	if len(closes) < length {
		sma := Mean(closes)
		return &sma
	}

	ema := talib.Ema(closes, length)
	if len(ema) > 0 && !isNaN(ema[len(ema)-1]) {
		result := ema[len(ema)-1]
		return &result
	}

	// Fallback to SMA of last 'length' prices
	sma := Mean(closes[len(closes)-length:])
	return &sma
}

// CalculateSMA calculates the Simple Moving Average
func CalculateSMA(closes []float64, length int) *float64 {
	if len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)
	if len(sma) > 0 && !isNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	return nil
}
