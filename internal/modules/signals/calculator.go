package signals

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantfold/signalcore/internal/domain"
)

// predicates are the boolean conditions the decision table evaluates.
// Computed once per call so every rule sees the same view.
type predicates struct {
	oversold           bool
	moderatelyOversold bool
	mildlyOversold     bool
	overbought         bool
	uptrend            bool
	downtrend          bool
	recentlyUp         bool
	recentlyDown       bool
	macdBullish        bool
	macdBearish        bool
}

// recentMoveThreshold is the fractional change that counts as a recent
// directional move (2%).
const recentMoveThreshold = 0.02

func computePredicates(cond MarketConditions, cfg SignalConfig) predicates {
	pricePosition := (cond.CurrentPrice - cond.SMA50) / cond.SMA50

	return predicates{
		oversold:           cond.RSI < cfg.RSIOversold,
		moderatelyOversold: cond.RSI < cfg.RSIModeratelyOversold,
		mildlyOversold:     cond.RSI < cfg.RSIMildlyOversold,
		overbought:         cond.RSI > cfg.RSIOverbought,
		uptrend:            cond.SMA20 > cond.SMA50 && pricePosition > 0,
		downtrend:          cond.SMA20 < cond.SMA50 && pricePosition < 0,
		recentlyUp:         cond.RecentChange > recentMoveThreshold,
		recentlyDown:       cond.RecentChange < -recentMoveThreshold,
		macdBullish:        cond.MACD > cond.MACDSignal,
		macdBearish:        cond.MACD < cond.MACDSignal,
	}
}

// rule is one (predicate, outcome) pair of the decision table.
type rule struct {
	name       string
	when       func(p predicates) bool
	signal     domain.SignalType
	confidence float64
	reason     func(cond MarketConditions, cfg SignalConfig) string
}

// decisionTable is evaluated top to bottom, first match wins. The order is a
// contract: mean-reversion entries take precedence over trend continuation,
// and exhaustion sells over trend sells.
var decisionTable = []rule{
	{
		name:       "mean_reversion_buy",
		when:       func(p predicates) bool { return p.oversold && p.recentlyDown },
		signal:     domain.SignalBuy,
		confidence: 0.7,
		reason: func(c MarketConditions, cfg SignalConfig) string {
			return fmt.Sprintf("RSI %.1f oversold (below %.1f) after %.1f%% recent decline, mean reversion entry",
				c.RSI, cfg.RSIOversold, c.RecentChange*100)
		},
	},
	{
		name:       "moderately_oversold_buy",
		when:       func(p predicates) bool { return p.moderatelyOversold && !p.downtrend },
		signal:     domain.SignalBuy,
		confidence: 0.6,
		reason: func(c MarketConditions, cfg SignalConfig) string {
			return fmt.Sprintf("RSI %.1f moderately oversold (below %.1f) without a confirmed downtrend",
				c.RSI, cfg.RSIModeratelyOversold)
		},
	},
	{
		name:       "mildly_oversold_buy",
		when:       func(p predicates) bool { return p.mildlyOversold && !p.downtrend },
		signal:     domain.SignalBuy,
		confidence: 0.4,
		reason: func(c MarketConditions, cfg SignalConfig) string {
			return fmt.Sprintf("RSI %.1f mildly oversold (below %.1f) without a confirmed downtrend",
				c.RSI, cfg.RSIMildlyOversold)
		},
	},
	{
		name:       "overbought_sell",
		when:       func(p predicates) bool { return p.overbought && p.recentlyUp },
		signal:     domain.SignalSell,
		confidence: 0.6,
		reason: func(c MarketConditions, cfg SignalConfig) string {
			return fmt.Sprintf("RSI %.1f overbought (above %.1f) after %.1f%% recent rally",
				c.RSI, cfg.RSIOverbought, c.RecentChange*100)
		},
	},
	{
		name:       "trend_continuation_buy",
		when:       func(p predicates) bool { return p.uptrend && p.macdBullish && !p.overbought },
		signal:     domain.SignalBuy,
		confidence: 0.5,
		reason: func(c MarketConditions, cfg SignalConfig) string {
			return fmt.Sprintf("uptrend intact (SMA20 %.2f above SMA50 %.2f) with bullish MACD, trend continuation",
				c.SMA20, c.SMA50)
		},
	},
	{
		name:       "trend_breakdown_sell",
		when:       func(p predicates) bool { return p.downtrend && p.macdBearish && !p.oversold },
		signal:     domain.SignalSell,
		confidence: 0.5,
		reason: func(c MarketConditions, cfg SignalConfig) string {
			return fmt.Sprintf("downtrend intact (SMA20 %.2f below SMA50 %.2f) with bearish MACD",
				c.SMA20, c.SMA50)
		},
	},
}

// Calculator evaluates the decision table against a conditions snapshot.
// Stateless and safe for concurrent use.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a signal calculator.
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{
		log: log.With().Str("component", "signal_calculator").Logger(),
	}
}

// Calculate runs the ordered decision table over validated conditions with
// an already-resolved (symbol-adjusted) config.
//
// Evaluation order:
//  1. Input validation - malformed input fails fast, never coerced.
//  2. Volatility gate - above MaxVolatility nothing else runs.
//  3. Decision table, first match wins.
//  4. Confidence boosts, clamped to [0.1, 0.9].
func (calc *Calculator) Calculate(cond MarketConditions, cfg SignalConfig) (SignalResult, error) {
	if err := cond.Validate(); err != nil {
		return SignalResult{}, err
	}

	// Volatility gate runs before every other rule.
	if cond.Volatility > cfg.MaxVolatility {
		return SignalResult{
			Signal:     domain.SignalHold,
			Confidence: domain.MinConfidence,
			Reasoning: []string{fmt.Sprintf("volatility %.1f%% exceeds maximum %.1f%%, holding",
				cond.Volatility, cfg.MaxVolatility)},
			Metadata: calc.metadata(cond, domain.MinConfidence),
		}, nil
	}

	p := computePredicates(cond, cfg)

	signal := domain.SignalHold
	confidence := 0.2
	reasoning := []string{"no rule matched, defaulting to hold"}
	matched := ""

	for _, r := range decisionTable {
		if r.when(p) {
			signal = r.signal
			confidence = r.confidence
			reasoning = []string{r.reason(cond, cfg)}
			matched = r.name
			break
		}
	}

	// Post-adjustments apply to buys only; clauses append in evaluation order.
	if signal == domain.SignalBuy {
		if cond.RSI < cfg.RSIOversold {
			confidence += cfg.OversoldBoost
			reasoning = append(reasoning, fmt.Sprintf("deeply oversold, confidence boosted by %.2f", cfg.OversoldBoost))
		}
		if p.uptrend {
			confidence += cfg.TrendBoost
			reasoning = append(reasoning, fmt.Sprintf("aligned with uptrend, confidence boosted by %.2f", cfg.TrendBoost))
		}
	}
	confidence = domain.ClampConfidence(confidence)

	calc.log.Debug().
		Str("rule", matched).
		Str("signal", string(signal)).
		Float64("confidence", confidence).
		Float64("rsi", cond.RSI).
		Msg("Decision table evaluated")

	return SignalResult{
		Signal:     signal,
		Confidence: confidence,
		Reasoning:  reasoning,
		Metadata:   calc.metadata(cond, confidence),
	}, nil
}

// metadata builds the diagnostic snapshot attached to every result.
func (calc *Calculator) metadata(cond MarketConditions, strength float64) map[string]interface{} {
	return map[string]interface{}{
		"rsi":             cond.RSI,
		"current_price":   cond.CurrentPrice,
		"signal_strength": strength,
	}
}
