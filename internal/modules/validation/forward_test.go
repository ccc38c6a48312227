package validation

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/modules/signallog"
)

func testSession() *Session {
	return NewSession(zerolog.Nop())
}

// linearBars builds n daily bars starting at basePrice, moving by step per
// bar.
func linearBars(n int, basePrice, step float64) domain.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make(domain.BarSeries, n)
	price := basePrice
	for i := range bars {
		bars[i] = domain.Bar{
			Date: start.AddDate(0, 0, i), Open: price, High: price + 1,
			Low: price - 1, Close: price, Volume: 1000,
		}
		price += step
	}
	return bars
}

func signalAt(series domain.BarSeries, idx int, signal domain.SignalType) signallog.Record {
	return signallog.Record{
		Symbol:     "SPY",
		Date:       series[idx].Date,
		EngineName: "signalcore",
		Signal:     signal,
		Confidence: 0.6,
		Price:      series[idx].Close,
		Regime:     "RANGE_BOUND",
		RSI:        30,
		Volatility: 2,
	}
}

func TestScore_ExcludesSignalWithTooFewForwardBars(t *testing.T) {
	series := linearBars(20, 100, 1)
	session := testSession()
	// Index 15 leaves only 4 forward bars.
	session.Add(signalAt(series, 15, domain.SignalBuy))

	report, err := session.Score(map[string]domain.BarSeries{"SPY": series})
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalSignals)
	assert.Equal(t, 0, report.Scored)
	assert.Equal(t, 1, report.Excluded, "Exclusions must be counted, never silently dropped")
}

func TestScore_ForwardBarBoundary(t *testing.T) {
	series := linearBars(30, 100, 1)
	session := testSession()
	session.Add(signalAt(series, len(series)-8, domain.SignalBuy)) // exactly 7 forward bars
	session.Add(signalAt(series, len(series)-7, domain.SignalBuy)) // only 6 forward bars

	report, err := session.Score(map[string]domain.BarSeries{"SPY": series})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Scored)
	assert.Equal(t, 1, report.Excluded)
}

func TestScore_BuyReturnsOnRisingSeries(t *testing.T) {
	series := linearBars(30, 100, 1)
	session := testSession()
	session.Add(signalAt(series, 10, domain.SignalBuy))

	report, err := session.Score(map[string]domain.BarSeries{"SPY": series})
	require.NoError(t, err)
	require.Len(t, report.Metrics, 1)

	m := report.Metrics[0]
	// Signal at close 110, 3 bars later close 113.
	assert.InDelta(t, 3.0/110.0, m.Return3D, 1e-9)
	assert.InDelta(t, 5.0/110.0, m.Return5D, 1e-9)
	assert.InDelta(t, 7.0/110.0, m.Return7D, 1e-9)
	assert.True(t, m.Profitable3D)
	assert.True(t, m.Profitable5D)
	assert.True(t, m.BounceSuccessful, "Rising series never makes a new 5-bar low")
	assert.Greater(t, m.MaxFavorableExcursion, 0.0)

	stats, ok := report.BySignalType["BUY"]
	require.True(t, ok)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 1.0, stats.WinRate)
	assert.Greater(t, stats.Expectancy, 0.0)
}

func TestScore_SellProfitsOnFallingSeries(t *testing.T) {
	series := linearBars(30, 200, -2)
	session := testSession()
	session.Add(signalAt(series, 10, domain.SignalSell))

	report, err := session.Score(map[string]domain.BarSeries{"SPY": series})
	require.NoError(t, err)
	require.Len(t, report.Metrics, 1)

	m := report.Metrics[0]
	assert.Less(t, m.Return5D, 0.0)
	assert.True(t, m.Profitable5D, "A falling market is a win for a SELL signal")

	stats := report.BySignalType["SELL"]
	assert.Equal(t, 1.0, stats.WinRate)
	assert.Greater(t, stats.Expectancy, 0.0)
}

func TestScore_BuyOnFallingSeriesFailsBounce(t *testing.T) {
	series := linearBars(30, 200, -2)
	session := testSession()
	session.Add(signalAt(series, 10, domain.SignalBuy))

	report, err := session.Score(map[string]domain.BarSeries{"SPY": series})
	require.NoError(t, err)
	require.Len(t, report.Metrics, 1)

	m := report.Metrics[0]
	assert.False(t, m.Profitable5D)
	assert.False(t, m.BounceSuccessful, "New lows after the signal fail the bounce check")
	assert.Less(t, m.MaxAdverseExcursion, 0.0)

	stats := report.BySignalType["BUY"]
	assert.Equal(t, 0.0, stats.WinRate)
	assert.Less(t, stats.Expectancy, 0.0)
}

func TestScore_HoldsAreCountedSeparately(t *testing.T) {
	series := linearBars(30, 100, 1)
	session := testSession()
	session.Add(signalAt(series, 10, domain.SignalHold))
	session.Add(signalAt(series, 11, domain.SignalBuy))

	report, err := session.Score(map[string]domain.BarSeries{"SPY": series})
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalSignals)
	assert.Equal(t, 1, report.Holds)
	assert.Equal(t, 1, report.Scored)
}

func TestScore_GroupsByRegime(t *testing.T) {
	series := linearBars(40, 100, 1)
	session := testSession()

	up := signalAt(series, 10, domain.SignalBuy)
	up.Regime = "TRENDING_UP"
	rb := signalAt(series, 12, domain.SignalBuy)
	rb.Regime = "RANGE_BOUND"
	session.Add(up, rb)

	report, err := session.Score(map[string]domain.BarSeries{"SPY": series})
	require.NoError(t, err)

	assert.Contains(t, report.ByRegime, "TRENDING_UP")
	assert.Contains(t, report.ByRegime, "RANGE_BOUND")
	assert.Equal(t, 1, report.ByRegime["TRENDING_UP"].Count)
}

func TestScore_MissingHistoryErrors(t *testing.T) {
	series := linearBars(30, 100, 1)
	session := testSession()
	session.Add(signalAt(series, 10, domain.SignalBuy))

	_, err := session.Score(map[string]domain.BarSeries{})
	require.Error(t, err)
}

func TestSessionIsolation(t *testing.T) {
	series := linearBars(30, 100, 1)

	first := testSession()
	first.Add(signalAt(series, 10, domain.SignalBuy))

	second := testSession()
	report, err := second.Score(map[string]domain.BarSeries{"SPY": series})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, 0, report.TotalSignals, "Sessions never share accumulated signals")
}
