// Package engine wires the regime classifier, signal calculator, bounce
// filter and risk sizer into a single decision pipeline. The engine is a
// pure function of the supplied bar window: no I/O, no clocks, no shared
// mutable state, safe to run concurrently across symbols.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/modules/bounce"
	"github.com/quantfold/signalcore/internal/modules/profiles"
	"github.com/quantfold/signalcore/internal/modules/regime"
	"github.com/quantfold/signalcore/internal/modules/risk"
	"github.com/quantfold/signalcore/internal/modules/signals"
	"github.com/quantfold/signalcore/pkg/formulas"
)

// Indicator parameters for deriving MarketConditions from raw bars.
const (
	rsiPeriod      = 14
	smaShortPeriod = 20
	smaLongPeriod  = 50
	macdFast       = 12
	macdSlow       = 26
	macdSignal     = 9
	volWindow      = 20
	recentLookback = 5
)

// Decision is the complete output for one evaluation: the signal itself,
// the regime it was produced under and the position plan.
type Decision struct {
	Symbol  string               `json:"symbol"`
	Date    time.Time            `json:"date"`
	Profile signals.ProfileName  `json:"profile"`
	Regime  regime.Regime        `json:"regime"`
	Result  signals.SignalResult `json:"result"`
	Plan    risk.PositionPlan    `json:"plan"`
}

// Engine is the façade collaborators call. Construct once, share freely.
type Engine struct {
	name     string
	resolver *profiles.Resolver
	calc     *signals.Calculator
	filter   *bounce.Filter
	sizer    *risk.Sizer
	base     signals.SignalConfig
	log      zerolog.Logger
}

// New creates an engine with the generic base config and the built-in
// symbol profile table.
func New(name string, resolver *profiles.Resolver, log zerolog.Logger) *Engine {
	return &Engine{
		name:     name,
		resolver: resolver,
		calc:     signals.NewCalculator(log),
		filter:   bounce.NewFilter(log),
		sizer:    risk.NewSizer(log),
		base:     signals.GenericConfig(),
		log:      log.With().Str("component", "engine").Str("engine", name).Logger(),
	}
}

// Name returns the engine name used as the persistence key component.
func (e *Engine) Name() string {
	return e.name
}

// GenerateSignal evaluates a symbol from raw bars, deriving the indicator
// snapshot itself. A zero asOf means the latest bar. Too little history for
// the indicators degrades to a HOLD with a named cause instead of failing.
func (e *Engine) GenerateSignal(symbol string, bars domain.BarSeries, asOf time.Time) (Decision, error) {
	window := bars.UpTo(asOf)
	if len(window) == 0 {
		return Decision{}, domain.InsufficientDataError("signal generation", 1, 0)
	}

	cond, err := e.buildConditions(window)
	if err != nil {
		// Insufficient history is an expected condition: hold, with the
		// cause in the reasoning, rather than an opaque failure.
		return e.holdDecision(symbol, window, fmt.Sprintf("insufficient data: %v", err)), nil
	}

	return e.Evaluate(symbol, cond, window)
}

// Evaluate runs the pipeline over a caller-supplied indicator snapshot plus
// the trailing bar window. Deterministic: identical inputs produce
// identical decisions.
func (e *Engine) Evaluate(symbol string, cond signals.MarketConditions, window domain.BarSeries) (Decision, error) {
	cfg := e.resolver.Resolve(symbol, e.base)
	profile := e.resolver.ProfileFor(symbol)

	var reg regime.Regime
	if profile == signals.ProfileLeveraged3x {
		reg = regime.ClassifyLeveraged(cond, window, cfg)
	} else {
		reg = regime.Classify(cond, window)
	}

	result, err := e.calc.Calculate(cond, cfg)
	if err != nil {
		return Decision{}, fmt.Errorf("signal calculation for %s: %w", symbol, err)
	}
	result = result.WithMeta("regime", string(reg)).WithMeta("volatility", cond.Volatility)

	analysis := e.filter.Analyze(window, time.Time{}, cond.RSI, cond.MACD, cond.MACDSignal)
	result = e.filter.Apply(result, analysis)

	plan := e.sizer.Size(result, cond.CurrentPrice, reg, window)

	decision := Decision{
		Symbol:  symbol,
		Date:    window[len(window)-1].Date,
		Profile: profile,
		Regime:  reg,
		Result:  result,
		Plan:    plan,
	}

	e.log.Info().
		Str("symbol", symbol).
		Str("signal", string(result.Signal)).
		Float64("confidence", result.Confidence).
		Str("regime", string(reg)).
		Float64("size_pct", plan.PositionSizePct).
		Msg("Signal generated")

	return decision, nil
}

// buildConditions derives the indicator snapshot from raw bars.
func (e *Engine) buildConditions(window domain.BarSeries) (signals.MarketConditions, error) {
	closes := window.Closes()

	rsi := formulas.CalculateRSI(closes, rsiPeriod)
	if rsi == nil {
		return signals.MarketConditions{}, domain.InsufficientDataError("rsi_14", rsiPeriod+1, len(closes))
	}

	sma20 := formulas.CalculateSMA(closes, smaShortPeriod)
	sma50 := formulas.CalculateSMA(closes, smaLongPeriod)
	if sma20 == nil || sma50 == nil {
		return signals.MarketConditions{}, domain.InsufficientDataError("sma_50", smaLongPeriod, len(closes))
	}

	macd := formulas.CalculateMACD(closes, macdFast, macdSlow, macdSignal)
	if macd == nil {
		return signals.MarketConditions{}, domain.InsufficientDataError("macd", macdSlow+macdSignal, len(closes))
	}

	// Volatility in percent: stdev of the trailing 20-bar returns x100.
	volTail := window.Tail(volWindow + 1).Closes()
	vol := formulas.StdDev(formulas.CalculateReturns(volTail)) * 100

	return signals.MarketConditions{
		RSI:          *rsi,
		SMA20:        *sma20,
		SMA50:        *sma50,
		CurrentPrice: closes[len(closes)-1],
		RecentChange: window.RecentChange(recentLookback),
		MACD:         macd.Line,
		MACDSignal:   macd.Signal,
		Volatility:   vol,
	}, nil
}

// holdDecision builds the conservative-default decision for degraded input.
func (e *Engine) holdDecision(symbol string, window domain.BarSeries, cause string) Decision {
	price := window[len(window)-1].Close

	profile := e.resolver.ProfileFor(symbol)
	conservative := regime.RangeBound
	if profile == signals.ProfileLeveraged3x {
		conservative = regime.MeanReversion
	}

	return Decision{
		Symbol:  symbol,
		Date:    window[len(window)-1].Date,
		Profile: profile,
		Regime:  conservative,
		Result: signals.SignalResult{
			Signal:     domain.SignalHold,
			Confidence: domain.MinConfidence,
			Reasoning:  []string{cause},
			Metadata: map[string]interface{}{
				"current_price":   price,
				"signal_strength": domain.MinConfidence,
			},
		},
		Plan: risk.PositionPlan{},
	}
}
