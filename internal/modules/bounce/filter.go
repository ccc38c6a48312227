// Package bounce confirms that a price decline has stabilized before a
// mean-reversion BUY is acted on. Unconfirmed BUY signals are downgraded to
// HOLD; SELL and HOLD signals pass through untouched.
package bounce

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/modules/signals"
	"github.com/quantfold/signalcore/pkg/formulas"
)

// Analysis is the derived bounce evidence over the trailing window.
type Analysis struct {
	IsBouncing         bool    `json:"is_bouncing"`
	BounceStrength     float64 `json:"bounce_strength"` // [0, 1]
	LowerLowsStopped   bool    `json:"lower_lows_stopped"`
	MACDImproving      bool    `json:"macd_improving"`
	VolumeConfirmation bool    `json:"volume_confirmation"`
	PriceActionScore   float64 `json:"price_action_score"` // [0, 1]
}

const (
	// window is the trailing bar count the analysis needs. Fewer bars fails
	// closed: not bouncing, BUY suppressed.
	window = 10

	// strengthThreshold is the minimum BounceStrength for confirmation.
	strengthThreshold = 0.6

	// volumeSpikeRatio is how far the latest volume must exceed the
	// trailing-5 average to count as confirmation.
	volumeSpikeRatio = 1.2

	// bounceConfidenceBoost is added to a confirmed BUY, capped at 0.9.
	bounceConfidenceBoost = 0.1

	// MACD periods for the histogram trend check.
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

// Filter computes bounce analyses and applies them to signal results.
// Stateless; safe for concurrent use.
type Filter struct {
	log zerolog.Logger
}

// NewFilter creates a bounce filter.
func NewFilter(log zerolog.Logger) *Filter {
	return &Filter{
		log: log.With().Str("component", "bounce_filter").Logger(),
	}
}

// Analyze computes bounce evidence over the trailing 10 bars at asOf.
// A zero asOf means the latest bar. Purely derived, no side effects.
func (f *Filter) Analyze(history domain.BarSeries, asOf time.Time, rsi, macd, macdSig float64) Analysis {
	bars := history.UpTo(asOf)
	if len(bars) < window {
		// Fail closed: without enough history there is no bounce evidence.
		return Analysis{}
	}

	recent := bars.Tail(window)

	lowsStopped := lowerLowsStopped(recent.Lows())
	macdImproving := macdHistogramRising(bars.Closes(), macd, macdSig)
	volumeConfirmed := volumeSpike(recent.Volumes())
	priceAction := priceActionScore(recent.Closes(), recent.Lows())

	strength := 0.0
	switch {
	case rsi < 30:
		strength += 0.3
	case rsi < 35:
		strength += 0.2
	case rsi < 40:
		strength += 0.1
	}
	if lowsStopped {
		strength += 0.3
	}
	if macdImproving {
		strength += 0.2
	}
	if volumeConfirmed {
		strength += 0.1
	}
	strength += priceAction * 0.1
	if strength > 1.0 {
		strength = 1.0
	}

	return Analysis{
		IsBouncing:         strength > strengthThreshold && lowsStopped && (macdImproving || volumeConfirmed),
		BounceStrength:     strength,
		LowerLowsStopped:   lowsStopped,
		MACDImproving:      macdImproving,
		VolumeConfirmation: volumeConfirmed,
		PriceActionScore:   priceAction,
	}
}

// Apply filters a signal result through the bounce analysis. Only BUY is
// filtered; an unconfirmed BUY becomes HOLD with the reasoning replaced, a
// confirmed BUY gains confidence. Never upgrades a non-BUY signal.
func (f *Filter) Apply(result signals.SignalResult, analysis Analysis) signals.SignalResult {
	if result.Signal != domain.SignalBuy {
		return result
	}

	result = result.
		WithMeta("bounce_strength", analysis.BounceStrength).
		WithMeta("is_bouncing", analysis.IsBouncing)

	if !analysis.IsBouncing {
		f.log.Debug().
			Float64("bounce_strength", analysis.BounceStrength).
			Bool("lower_lows_stopped", analysis.LowerLowsStopped).
			Msg("BUY suppressed, bounce unconfirmed")

		result.Signal = domain.SignalHold
		result.Confidence = domain.MinConfidence
		result.Reasoning = []string{fmt.Sprintf(
			"buy suppressed: bounce unconfirmed (strength %.2f, lower lows stopped: %t, macd improving: %t, volume confirmation: %t)",
			analysis.BounceStrength, analysis.LowerLowsStopped, analysis.MACDImproving, analysis.VolumeConfirmation)}
		return result
	}

	result.Confidence = domain.ClampConfidence(result.Confidence + bounceConfidenceBoost)
	result.Reasoning = append(result.Reasoning,
		fmt.Sprintf("bounce confirmed with strength %.2f", analysis.BounceStrength))
	return result
}

// lowerLowsStopped checks whether the latest of the last 5 lows exceeds at
// least 60% of the prior 4 (3 of 4), i.e. the sequence of lower lows broke.
func lowerLowsStopped(lows []float64) bool {
	if len(lows) < 5 {
		return false
	}
	last5 := lows[len(lows)-5:]
	latest := last5[4]

	higherThan := 0
	for _, prior := range last5[:4] {
		if latest > prior {
			higherThan++
		}
	}
	return higherThan >= 3
}

// macdHistogramRising checks the 3-bar MACD-histogram trend. With enough
// closes the histogram series is recomputed; short histories fall back to
// the sign of the current histogram.
func macdHistogramRising(closes []float64, macd, macdSig float64) bool {
	hist := formulas.MACDHistogramSeries(closes, macdFast, macdSlow, macdSignal)
	if len(hist) < 3 {
		return macd-macdSig > 0
	}
	n := len(hist)
	return hist[n-1] > hist[n-2] && hist[n-2] > hist[n-3]
}

// volumeSpike checks whether the latest volume exceeds 1.2x the trailing-5
// average.
func volumeSpike(volumes []float64) bool {
	if len(volumes) < 6 {
		return false
	}
	latest := volumes[len(volumes)-1]
	avg := formulas.Mean(volumes[len(volumes)-6 : len(volumes)-1])
	return avg > 0 && latest > volumeSpikeRatio*avg
}

// priceActionScore grades stabilization evidence in [0, 1]:
//
//	+0.3 price more than 2% above the 10-bar low
//	+0.3 3-bar close volatility below 10-bar close volatility
//	+0.4 max of the last 3 closes above max(closes[-5:-2])
func priceActionScore(closes, lows []float64) float64 {
	if len(closes) < window || len(lows) < window {
		return 0
	}

	score := 0.0
	price := closes[len(closes)-1]

	low := lows[0]
	for _, l := range lows {
		if l < low {
			low = l
		}
	}
	if low > 0 && price > low*1.02 {
		score += 0.3
	}

	if formulas.StdDev(closes[len(closes)-3:]) < formulas.StdDev(closes) {
		score += 0.3
	}

	recentMax := maxOf(closes[len(closes)-3:])
	priorMax := maxOf(closes[len(closes)-5 : len(closes)-2])
	if recentMax > priorMax {
		score += 0.4
	}

	return score
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
