package formulas

import (
	"github.com/markcheno/go-talib"
)

// MACDResult holds the three MACD output series values at the latest bar.
type MACDResult struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// CalculateMACD calculates the Moving Average Convergence Divergence indicator
// using the standard 12/26/9 EMA periods unless overridden.
//
// Returns nil if the series is too short to produce a stable signal line.
func CalculateMACD(closes []float64, fast, slow, signalPeriod int) *MACDResult {
	// The signal line needs slow+signal bars before it stabilizes
	if len(closes) < slow+signalPeriod {
		return nil
	}

	macd, signal, hist := talib.Macd(closes, fast, slow, signalPeriod)
	last := len(macd) - 1
	if last < 0 || isNaN(macd[last]) || isNaN(signal[last]) {
		return nil
	}

	return &MACDResult{
		Line:      macd[last],
		Signal:    signal[last],
		Histogram: hist[last],
	}
}

// MACDHistogramSeries returns the trailing MACD-histogram values for the
// given closes, or nil if the series is too short. Used for bounce
// confirmation, which inspects the histogram trend over the last few bars.
func MACDHistogramSeries(closes []float64, fast, slow, signalPeriod int) []float64 {
	if len(closes) < slow+signalPeriod {
		return nil
	}

	_, _, hist := talib.Macd(closes, fast, slow, signalPeriod)
	return hist
}
