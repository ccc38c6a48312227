// Package signals implements the rule-based trading signal calculator.
//
// The calculator is a pure function over an immutable MarketConditions
// snapshot and a validated SignalConfig: no global state, no I/O, safe for
// concurrent use across any number of goroutines.
package signals

import (
	"math"

	"github.com/quantfold/signalcore/internal/domain"
)

// MarketConditions is an immutable snapshot of the technical indicators the
// calculator evaluates. All numeric fields must be real numbers; a missing
// upstream value is an explicit InsufficientData condition at the boundary,
// never a silently substituted default.
type MarketConditions struct {
	RSI          float64 `json:"rsi"`
	SMA20        float64 `json:"sma_20"`
	SMA50        float64 `json:"sma_50"`
	CurrentPrice float64 `json:"current_price"`
	// RecentChange is the fractional price change over a short lookback,
	// e.g. -0.03 for a 3% decline.
	RecentChange float64 `json:"recent_change"`
	MACD         float64 `json:"macd"`
	MACDSignal   float64 `json:"macd_signal"`
	// Volatility is expressed in percent (annualized), e.g. 2.0 for 2%.
	Volatility float64 `json:"volatility"`

	// Optional context fields.
	VIXLevel        *float64 `json:"vix_level,omitempty"`
	VolatilityTrend string   `json:"volatility_trend,omitempty"`
}

// Validate fails fast on NaN or out-of-domain values. Runs before any
// signal rule is evaluated.
func (c MarketConditions) Validate() error {
	fields := map[string]float64{
		"rsi":           c.RSI,
		"sma_20":        c.SMA20,
		"sma_50":        c.SMA50,
		"current_price": c.CurrentPrice,
		"recent_change": c.RecentChange,
		"macd":          c.MACD,
		"macd_signal":   c.MACDSignal,
		"volatility":    c.Volatility,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.InvalidInputError(name, v)
		}
	}

	if c.CurrentPrice <= 0 {
		return domain.InvalidInputError("current_price", c.CurrentPrice)
	}
	if c.RSI < 0 || c.RSI > 100 {
		return domain.InvalidInputError("rsi", c.RSI)
	}
	if c.SMA20 <= 0 || c.SMA50 <= 0 {
		return domain.InvalidInputError("sma", c.SMA20)
	}
	if c.Volatility < 0 {
		return domain.InvalidInputError("volatility", c.Volatility)
	}
	if c.VIXLevel != nil && (math.IsNaN(*c.VIXLevel) || *c.VIXLevel < 0) {
		return domain.InvalidInputError("vix_level", *c.VIXLevel)
	}

	return nil
}
