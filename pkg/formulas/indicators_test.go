package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRSI(t *testing.T) {
	t.Run("insufficient data returns nil", func(t *testing.T) {
		closes := []float64{100, 101, 102}
		assert.Nil(t, CalculateRSI(closes, 14))
	})

	t.Run("steady gains read overbought", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}

		rsi := CalculateRSI(closes, 14)
		require.NotNil(t, rsi)
		assert.Greater(t, *rsi, 70.0)
	})

	t.Run("steady losses read oversold", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100 - float64(i)
		}

		rsi := CalculateRSI(closes, 14)
		require.NotNil(t, rsi)
		assert.Less(t, *rsi, 30.0)
	})
}

func TestCalculateSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	sma := CalculateSMA(closes, 5)
	require.NotNil(t, sma)
	assert.InDelta(t, 3.0, *sma, 1e-9)

	assert.Nil(t, CalculateSMA(closes, 6), "Insufficient data should return nil")
}

func TestCalculateMACD(t *testing.T) {
	t.Run("insufficient data returns nil", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100
		}
		assert.Nil(t, CalculateMACD(closes, 12, 26, 9))
	})

	t.Run("flat series has zero macd", func(t *testing.T) {
		closes := make([]float64, 60)
		for i := range closes {
			closes[i] = 100
		}

		macd := CalculateMACD(closes, 12, 26, 9)
		require.NotNil(t, macd)
		assert.InDelta(t, 0.0, macd.Line, 1e-9)
		assert.InDelta(t, 0.0, macd.Signal, 1e-9)
		assert.InDelta(t, 0.0, macd.Histogram, 1e-9)
	})
}

func TestMACDHistogramSeries(t *testing.T) {
	short := make([]float64, 10)
	assert.Nil(t, MACDHistogramSeries(short, 12, 26, 9))

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	hist := MACDHistogramSeries(closes, 12, 26, 9)
	assert.Len(t, hist, 60)
}

func TestCalculateATR(t *testing.T) {
	n := 30
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100
		highs[i] = 101
		lows[i] = 99
	}

	atr := CalculateATR(highs, lows, closes, 14)
	assert.NotNil(t, atr)
	assert.InDelta(t, 2.0, *atr, 0.01, "Constant 2-point range should give ATR of 2")

	assert.Nil(t, CalculateATR(highs[:5], lows[:5], closes[:5], 14), "Insufficient data should return nil")
	assert.Nil(t, CalculateATR(highs[:10], lows, closes, 14), "Mismatched lengths should return nil")
}
