package regime

import (
	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/modules/signals"
)

// Leveraged classifier thresholds.
const (
	breakoutRSILow   = 55
	breakoutRSIHigh  = 70
	sharpAdverseMove = -0.03
	breakoutMove     = 0.02
)

// ClassifyLeveraged labels the market regime for a 3x-leveraged ETF using
// the leveraged taxonomy. Like Classify it is pure and degrades to the
// conservative default (MEAN_REVERSION) on short history.
//
// Check order matters: volatility expansion beats breakout, which beats the
// oversold/trend split, so a violent tape never reads as momentum.
func ClassifyLeveraged(cond signals.MarketConditions, recentBars domain.BarSeries, cfg signals.SignalConfig) Regime {
	if len(recentBars) < minBars {
		return MeanReversion
	}

	// Volatility above the alert threshold plus a sharp adverse move marks
	// expansion - the most dangerous state for a leveraged instrument.
	if cond.Volatility > cfg.VolatilityAlert && cond.RecentChange < sharpAdverseMove {
		return VolatilityExpansion
	}

	// Strong momentum with RSI in the 55-70 band is a breakout, not yet
	// overbought exhaustion.
	if cond.RSI >= breakoutRSILow && cond.RSI <= breakoutRSIHigh &&
		cond.RecentChange > breakoutMove && cond.MACD > cond.MACDSignal {
		return Breakout
	}

	if cond.RSI < cfg.RSIMildlyOversold {
		return MeanReversion
	}

	return TrendContinuation
}

// TaxonomyFor returns the set of regimes a profile's classifier can emit.
// Useful for exhaustiveness checks and report grouping.
func TaxonomyFor(profile signals.ProfileName) []Regime {
	if profile == signals.ProfileLeveraged3x {
		return []Regime{MeanReversion, TrendContinuation, Breakout, VolatilityExpansion}
	}
	return []Regime{TrendingUp, TrendingDown, RangeBound, VolatileChop}
}

// IsTrendFollowing reports whether a regime favors trend-following sizing.
func IsTrendFollowing(r Regime) bool {
	switch r {
	case TrendingUp, TrendingDown, TrendContinuation, Breakout:
		return true
	default:
		return false
	}
}

// IsChoppy reports whether a regime calls for reduced position sizing.
func IsChoppy(r Regime) bool {
	switch r {
	case VolatileChop, VolatilityExpansion:
		return true
	default:
		return false
	}
}
