// Package domain provides core domain models and types.
package domain

import "time"

// Bar represents a single OHLCV price bar.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// BarSeries is an ordered (oldest first) sequence of bars for one symbol.
type BarSeries []Bar

// Closes returns the closing prices of the series, oldest first.
func (s BarSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Lows returns the low prices of the series, oldest first.
func (s BarSeries) Lows() []float64 {
	lows := make([]float64, len(s))
	for i, b := range s {
		lows[i] = b.Low
	}
	return lows
}

// Highs returns the high prices of the series, oldest first.
func (s BarSeries) Highs() []float64 {
	highs := make([]float64, len(s))
	for i, b := range s {
		highs[i] = b.High
	}
	return highs
}

// Volumes returns the volumes of the series, oldest first.
func (s BarSeries) Volumes() []float64 {
	vols := make([]float64, len(s))
	for i, b := range s {
		vols[i] = b.Volume
	}
	return vols
}

// Tail returns the last n bars of the series (the whole series if shorter).
func (s BarSeries) Tail(n int) BarSeries {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// UpTo returns the bars at or before the given date. A zero date returns the
// full series (default: latest bar is the as-of point).
func (s BarSeries) UpTo(asOf time.Time) BarSeries {
	if asOf.IsZero() {
		return s
	}
	for i := len(s) - 1; i >= 0; i-- {
		if !s[i].Date.After(asOf) {
			return s[:i+1]
		}
	}
	return nil
}

// RecentChange returns the fractional price change over the last `lookback`
// bars, e.g. -0.03 for a 3% decline. Returns 0 when the series is too short.
func (s BarSeries) RecentChange(lookback int) float64 {
	if len(s) < lookback+1 {
		return 0
	}
	prev := s[len(s)-1-lookback].Close
	if prev == 0 {
		return 0
	}
	return (s[len(s)-1].Close - prev) / prev
}
