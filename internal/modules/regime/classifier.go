// Package regime labels market behavior so the signal calculator and risk
// sizer can adapt to it. Two deliberately separate taxonomies exist: the
// generic one for equities/ETFs and a leveraged one for 3x ETFs. They are
// distinct state machines with different thresholds, selected per symbol
// profile, and are never unified.
package regime

import (
	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/modules/signals"
	"github.com/quantfold/signalcore/pkg/formulas"
)

// Regime is a discrete market-behavior classification. Exactly one value is
// produced per evaluation; it is derived fresh each call and never persisted.
type Regime string

// Generic taxonomy.
const (
	TrendingUp   Regime = "TRENDING_UP"
	TrendingDown Regime = "TRENDING_DOWN"
	RangeBound   Regime = "RANGE_BOUND"
	VolatileChop Regime = "VOLATILE_CHOP"
)

// Leveraged taxonomy.
const (
	MeanReversion       Regime = "MEAN_REVERSION"
	TrendContinuation   Regime = "TREND_CONTINUATION"
	Breakout            Regime = "BREAKOUT"
	VolatilityExpansion Regime = "VOLATILITY_EXPANSION"
)

// Generic classifier thresholds.
const (
	trendSlopeThreshold    = 0.02
	pricePositionThreshold = 0.01
	rangeVolThreshold      = 0.25
	chopVolThreshold       = 0.35
	minBars                = 10
	returnWindow           = 20
)

// Classify labels the market regime for a generic instrument. Deterministic
// and side-effect free.
//
// trendSlope = (sma20 - sma50) / sma50
// pricePosition = (price - sma50) / sma50
// volatility = annualized stdev of the trailing 20-bar returns
//
// Fewer than 10 bars degrades to RANGE_BOUND, never an error; ambiguous or
// tied readings also resolve to RANGE_BOUND.
func Classify(cond signals.MarketConditions, recentBars domain.BarSeries) Regime {
	if len(recentBars) < minBars {
		return RangeBound
	}

	trendSlope := (cond.SMA20 - cond.SMA50) / cond.SMA50
	pricePosition := (cond.CurrentPrice - cond.SMA50) / cond.SMA50

	closes := recentBars.Tail(returnWindow + 1).Closes()
	vol := formulas.AnnualizedVolatility(formulas.CalculateReturns(closes))

	switch {
	case vol > chopVolThreshold:
		return VolatileChop
	case trendSlope > trendSlopeThreshold && pricePosition > pricePositionThreshold:
		return TrendingUp
	case trendSlope < -trendSlopeThreshold && pricePosition < -pricePositionThreshold:
		return TrendingDown
	default:
		return RangeBound
	}
}
