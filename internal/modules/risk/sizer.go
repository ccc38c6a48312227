// Package risk turns a signal into a position plan: size, stop loss and a
// take-profit ladder. Kept separate from the signal calculator so sizing
// policy can change without touching signal logic.
package risk

import (
	"github.com/rs/zerolog"

	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/modules/regime"
	"github.com/quantfold/signalcore/internal/modules/signals"
	"github.com/quantfold/signalcore/pkg/formulas"
)

// PositionPlan is the sizing output for a single signal. HOLD signals carry
// a zero size and no stop or targets.
type PositionPlan struct {
	PositionSizePct float64   `json:"position_size_pct"`
	StopLoss        *float64  `json:"stop_loss,omitempty"`
	TakeProfit      []float64 `json:"take_profit,omitempty"`
}

const (
	confidenceScale  = 0.5
	buyMultiplier    = 1.1
	trendMultiplier  = 1.2
	choppyMultiplier = 0.7
	minPositionPct   = 0.05
	maxPositionPct   = 0.95

	// Stop distance is 2x the ATR proxy; the proxy falls back to 2% of
	// price when there is not enough history for a real ATR(14).
	stopATRMultiple = 2.0
	fallbackATRPct  = 0.02
	atrPeriod       = 14
)

// takeProfitRungs are the ladder multiples of the stop distance.
var takeProfitRungs = [3]float64{1.5, 2.5, 4.0}

// Sizer computes position plans. Stateless; safe for concurrent use.
type Sizer struct {
	log zerolog.Logger
}

// NewSizer creates a risk sizer.
func NewSizer(log zerolog.Logger) *Sizer {
	return &Sizer{
		log: log.With().Str("component", "risk_sizer").Logger(),
	}
}

// Size computes the position plan for a signal result at the current price
// under the given regime. Bars are optional: with 15+ bars the stop distance
// uses a real ATR(14), otherwise the 2%-of-price proxy.
func (s *Sizer) Size(result signals.SignalResult, price float64, reg regime.Regime, bars domain.BarSeries) PositionPlan {
	if !result.Signal.IsActionable() {
		return PositionPlan{}
	}

	base := result.Confidence * confidenceScale
	if regime.IsTrendFollowing(reg) {
		base *= trendMultiplier
	} else if regime.IsChoppy(reg) {
		base *= choppyMultiplier
	}
	if result.Signal == domain.SignalBuy {
		base *= buyMultiplier
	}
	size := clampSize(base)

	dist := stopATRMultiple * s.atrProxy(price, bars)

	var stop float64
	targets := make([]float64, 0, len(takeProfitRungs))
	if result.Signal == domain.SignalBuy {
		stop = price - dist
		for _, rung := range takeProfitRungs {
			targets = append(targets, price+rung*dist)
		}
	} else {
		stop = price + dist
		for _, rung := range takeProfitRungs {
			targets = append(targets, price-rung*dist)
		}
	}

	s.log.Debug().
		Str("signal", string(result.Signal)).
		Str("regime", string(reg)).
		Float64("size_pct", size).
		Float64("stop_loss", stop).
		Msg("Position plan computed")

	return PositionPlan{
		PositionSizePct: size,
		StopLoss:        &stop,
		TakeProfit:      targets,
	}
}

// atrProxy returns the ATR(14) when enough bars exist, else 2% of price.
func (s *Sizer) atrProxy(price float64, bars domain.BarSeries) float64 {
	if len(bars) >= atrPeriod+1 {
		if atr := formulas.CalculateATR(bars.Highs(), bars.Lows(), bars.Closes(), atrPeriod); atr != nil && *atr > 0 {
			return *atr
		}
	}
	return price * fallbackATRPct
}

func clampSize(size float64) float64 {
	if size < minPositionPct {
		return minPositionPct
	}
	if size > maxPositionPct {
		return maxPositionPct
	}
	return size
}
