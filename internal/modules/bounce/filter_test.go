package bounce

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/modules/signals"
)

func testFilter() *Filter {
	return NewFilter(zerolog.Nop())
}

// barsFrom builds a series from parallel close/low/volume values.
func barsFrom(closes, lows, volumes []float64) domain.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make(domain.BarSeries, len(closes))
	for i := range closes {
		bars[i] = domain.Bar{
			Date: start.AddDate(0, 0, i), Open: closes[i], High: closes[i] + 0.5,
			Low: lows[i], Close: closes[i], Volume: volumes[i],
		}
	}
	return bars
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func buyResult(confidence float64) signals.SignalResult {
	return signals.SignalResult{
		Signal:     domain.SignalBuy,
		Confidence: confidence,
		Reasoning:  []string{"oversold entry"},
		Metadata:   map[string]interface{}{"rsi": 25.0},
	}
}

func TestAnalyze_DecliningLowsNotBouncing(t *testing.T) {
	// Monotonically declining lows, flat volume, flat MACD: every
	// confirmation check fails.
	closes := []float64{100, 99, 98, 97, 96, 95, 94, 93, 92, 91}
	lows := []float64{99.5, 98.5, 97.5, 96.5, 95.5, 94.5, 93.5, 92.5, 91.5, 90.5}

	analysis := testFilter().Analyze(barsFrom(closes, lows, repeat(1000, 10)), time.Time{}, 25, 0, 0)

	assert.False(t, analysis.IsBouncing)
	assert.False(t, analysis.LowerLowsStopped)
	assert.False(t, analysis.VolumeConfirmation)
	assert.False(t, analysis.MACDImproving)
	assert.LessOrEqual(t, analysis.BounceStrength, 0.6)
}

func TestAnalyze_ConfirmedBounce(t *testing.T) {
	// Decline that stabilizes: the latest low holds above three of the four
	// prior lows, volume spikes, and the MACD histogram fallback is positive.
	closes := []float64{100, 99, 98, 97, 96, 95, 94, 93, 92.5, 94}
	lows := []float64{99, 98, 97, 96, 95, 94, 93, 92, 91.5, 93.5}
	volumes := []float64{1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 2000}

	analysis := testFilter().Analyze(barsFrom(closes, lows, volumes), time.Time{}, 28, 0.5, 0.2)

	assert.True(t, analysis.LowerLowsStopped)
	assert.True(t, analysis.VolumeConfirmation)
	assert.True(t, analysis.MACDImproving)
	assert.Greater(t, analysis.BounceStrength, 0.6)
	assert.True(t, analysis.IsBouncing)
}

func TestAnalyze_InsufficientBarsFailsClosed(t *testing.T) {
	closes := []float64{100, 99, 98, 97}
	lows := []float64{99, 98, 97, 96}

	analysis := testFilter().Analyze(barsFrom(closes, lows, repeat(1000, 4)), time.Time{}, 25, 1, 0)

	assert.False(t, analysis.IsBouncing)
	assert.Equal(t, 0.0, analysis.BounceStrength)
}

func TestApply_SuppressesUnconfirmedBuy(t *testing.T) {
	result := testFilter().Apply(buyResult(0.6), Analysis{IsBouncing: false, BounceStrength: 0.3})

	assert.Equal(t, domain.SignalHold, result.Signal)
	assert.Equal(t, 0.1, result.Confidence)
	require.NotEmpty(t, result.Reasoning)
	assert.Contains(t, result.Reasoning[0], "suppressed")
	assert.Equal(t, 0.3, result.Metadata["bounce_strength"])
}

func TestApply_BoostsConfirmedBuy(t *testing.T) {
	result := testFilter().Apply(buyResult(0.6), Analysis{IsBouncing: true, BounceStrength: 0.8})

	assert.Equal(t, domain.SignalBuy, result.Signal)
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)
	assert.Contains(t, result.Reasoning[len(result.Reasoning)-1], "bounce confirmed")
}

func TestApply_ConfirmationBoostCapped(t *testing.T) {
	result := testFilter().Apply(buyResult(0.85), Analysis{IsBouncing: true, BounceStrength: 0.9})
	assert.Equal(t, 0.9, result.Confidence)
}

func TestApply_NeverTouchesNonBuys(t *testing.T) {
	sell := signals.SignalResult{Signal: domain.SignalSell, Confidence: 0.5, Reasoning: []string{"overbought"}}
	hold := signals.SignalResult{Signal: domain.SignalHold, Confidence: 0.2, Reasoning: []string{"no rule matched"}}

	f := testFilter()
	for _, analysis := range []Analysis{{}, {IsBouncing: true, BounceStrength: 0.9}} {
		assert.Equal(t, sell, f.Apply(sell, analysis), "SELL must pass through unchanged")
		assert.Equal(t, hold, f.Apply(hold, analysis), "HOLD must never be upgraded")
	}
}

func TestEndToEnd_DecliningSeriesDowngradesBuy(t *testing.T) {
	closes := []float64{100, 99, 98, 97, 96, 95, 94, 93, 92, 91}
	lows := []float64{99.5, 98.5, 97.5, 96.5, 95.5, 94.5, 93.5, 92.5, 91.5, 90.5}
	f := testFilter()

	analysis := f.Analyze(barsFrom(closes, lows, repeat(1000, 10)), time.Time{}, 25, 0, 0)
	result := f.Apply(buyResult(0.6), analysis)

	assert.Equal(t, domain.SignalHold, result.Signal)
	assert.Equal(t, 0.1, result.Confidence)
}
