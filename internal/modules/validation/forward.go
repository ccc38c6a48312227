// Package validation scores historical signal quality from forward returns.
// It runs offline over stored signal logs, never in the signal hot path.
// Signals without enough forward history are excluded from aggregates but
// always counted, so the report carries no survivorship bias.
package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/modules/signallog"
)

// minForwardBars is the forward history a signal needs to be scored.
const minForwardBars = 7

// ForwardReturnMetrics is the scored outcome of one signal.
type ForwardReturnMetrics struct {
	SignalDate  time.Time         `json:"signal_date"`
	Symbol      string            `json:"symbol"`
	SignalType  domain.SignalType `json:"signal_type"`
	SignalPrice float64           `json:"signal_price"`

	Return3D float64 `json:"return_3d"`
	Return5D float64 `json:"return_5d"`
	Return7D float64 `json:"return_7d"`

	// Excursions are direction-adjusted: adverse is the worst move against
	// the trade, favorable the best move with it, both as fractions.
	MaxAdverseExcursion   float64 `json:"max_adverse_excursion"`
	MaxFavorableExcursion float64 `json:"max_favorable_excursion"`

	Profitable3D bool `json:"is_profitable_3d"`
	Profitable5D bool `json:"is_profitable_5d"`

	// BounceSuccessful applies to BUY signals only: true when no new 5-bar
	// low was made after the signal.
	BounceSuccessful bool `json:"bounce_successful"`

	RSIAtSignal        float64 `json:"rsi_at_signal"`
	VolatilityAtSignal float64 `json:"volatility_at_signal"`
	TrendAtSignal      string  `json:"trend_at_signal"`
}

// GroupStats aggregates scored signals for one group (signal type or regime).
type GroupStats struct {
	Count      int     `json:"count"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
	AvgWin     float64 `json:"avg_win"`
	AvgLoss    float64 `json:"avg_loss"`
	Expectancy float64 `json:"expectancy"`
}

// QualityReport is the validator output for one session.
type QualityReport struct {
	SessionID string `json:"session_id"`

	TotalSignals int `json:"total_signals"`
	Scored       int `json:"scored"`
	// Excluded counts signals with fewer than 7 forward bars. Always
	// reported, never silently dropped.
	Excluded int `json:"excluded"`
	// Holds counts HOLD signals, which carry no direction to score.
	Holds int `json:"holds"`

	Metrics []ForwardReturnMetrics `json:"metrics"`

	BySignalType map[string]GroupStats `json:"by_signal_type"`
	ByRegime     map[string]GroupStats `json:"by_regime"`
}

// Session accumulates signals for one backtest run. Sessions are isolated:
// a session must not be shared across concurrent backtests, and nothing is
// shared between sessions.
type Session struct {
	id      string
	signals []signallog.Record
	log     zerolog.Logger
}

// NewSession creates an isolated validation session.
func NewSession(log zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:  id,
		log: log.With().Str("component", "forward_validator").Str("session", id).Logger(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Add appends signals to the session history.
func (s *Session) Add(records ...signallog.Record) {
	s.signals = append(s.signals, records...)
}

// Score computes forward-return metrics for every accumulated signal against
// the supplied per-symbol price history and aggregates them into a report.
func (s *Session) Score(history map[string]domain.BarSeries) (QualityReport, error) {
	report := QualityReport{
		SessionID:    s.id,
		TotalSignals: len(s.signals),
		BySignalType: make(map[string]GroupStats),
		ByRegime:     make(map[string]GroupStats),
	}

	for _, sig := range s.signals {
		if sig.Signal == domain.SignalHold {
			report.Holds++
			continue
		}

		series, ok := history[sig.Symbol]
		if !ok {
			return QualityReport{}, fmt.Errorf("%w: no price history for %s", domain.ErrInvalidInput, sig.Symbol)
		}

		idx := barIndexAt(series, sig.Date)
		if idx < 0 {
			return QualityReport{}, fmt.Errorf("%w: no bar at %s for %s", domain.ErrInvalidInput, sig.Date.Format("2006-01-02"), sig.Symbol)
		}

		future := series[idx+1:]
		if len(future) < minForwardBars {
			report.Excluded++
			continue
		}

		m := scoreSignal(sig, series, idx)
		report.Metrics = append(report.Metrics, m)
		report.Scored++
	}

	aggregate(&report)

	s.log.Info().
		Int("total", report.TotalSignals).
		Int("scored", report.Scored).
		Int("excluded", report.Excluded).
		Msg("Forward-return validation complete")

	return report, nil
}

// scoreSignal computes the metrics for one signal with >=7 forward bars.
func scoreSignal(sig signallog.Record, series domain.BarSeries, idx int) ForwardReturnMetrics {
	price := sig.Price
	if price == 0 {
		price = series[idx].Close
	}
	future := series[idx+1 : idx+1+minForwardBars]

	ret := func(days int) float64 {
		return (future[days-1].Close - price) / price
	}

	// Direction sign: +1 for BUY, -1 for SELL.
	sign := 1.0
	if sig.Signal == domain.SignalSell {
		sign = -1.0
	}

	adverse, favorable := 0.0, 0.0
	for _, b := range future {
		lowMove := sign * (b.Low - price) / price
		highMove := sign * (b.High - price) / price
		worst, best := lowMove, highMove
		if worst > best {
			worst, best = best, worst
		}
		if worst < adverse {
			adverse = worst
		}
		if best > favorable {
			favorable = best
		}
	}

	m := ForwardReturnMetrics{
		SignalDate:            sig.Date,
		Symbol:                sig.Symbol,
		SignalType:            sig.Signal,
		SignalPrice:           price,
		Return3D:              ret(3),
		Return5D:              ret(5),
		Return7D:              ret(7),
		MaxAdverseExcursion:   adverse,
		MaxFavorableExcursion: favorable,
		Profitable3D:          sign*ret(3) > 0,
		Profitable5D:          sign*ret(5) > 0,
		RSIAtSignal:           sig.RSI,
		VolatilityAtSignal:    sig.Volatility,
		TrendAtSignal:         sig.Regime,
	}

	if sig.Signal == domain.SignalBuy {
		m.BounceSuccessful = noNewLow(series, idx)
	}

	return m
}

// noNewLow reports whether the 5 bars after the signal held above the 5-bar
// low in place at signal time.
func noNewLow(series domain.BarSeries, idx int) bool {
	start := idx - 4
	if start < 0 {
		start = 0
	}
	priorLow := series[start].Low
	for _, b := range series[start : idx+1] {
		if b.Low < priorLow {
			priorLow = b.Low
		}
	}

	end := idx + 6
	if end > len(series) {
		end = len(series)
	}
	for _, b := range series[idx+1 : end] {
		if b.Low < priorLow {
			return false
		}
	}
	return true
}

// aggregate fills the grouped statistics from the scored metrics. Wins are
// judged on the direction-adjusted 5-day return.
func aggregate(report *QualityReport) {
	type bucket struct {
		count  int
		wins   int
		winSum float64
		losses int
		losSum float64
	}

	byType := make(map[string]*bucket)
	byRegime := make(map[string]*bucket)

	add := func(m map[string]*bucket, key string, adjusted float64) {
		b, ok := m[key]
		if !ok {
			b = &bucket{}
			m[key] = b
		}
		b.count++
		if adjusted > 0 {
			b.wins++
			b.winSum += adjusted
		} else {
			b.losses++
			b.losSum += adjusted
		}
	}

	for _, m := range report.Metrics {
		adjusted := m.Return5D
		if m.SignalType == domain.SignalSell {
			adjusted = -adjusted
		}
		add(byType, string(m.SignalType), adjusted)
		add(byRegime, m.TrendAtSignal, adjusted)
	}

	finalize := func(src map[string]*bucket, dst map[string]GroupStats) {
		for key, b := range src {
			stats := GroupStats{
				Count:   b.count,
				Wins:    b.wins,
				WinRate: float64(b.wins) / float64(b.count),
			}
			if b.wins > 0 {
				stats.AvgWin = b.winSum / float64(b.wins)
			}
			if b.losses > 0 {
				stats.AvgLoss = b.losSum / float64(b.losses)
			}
			lossRate := float64(b.losses) / float64(b.count)
			stats.Expectancy = stats.WinRate*stats.AvgWin - lossRate*abs(stats.AvgLoss)
			dst[key] = stats
		}
	}

	finalize(byType, report.BySignalType)
	finalize(byRegime, report.ByRegime)
}

// barIndexAt finds the index of the bar on the signal date.
func barIndexAt(series domain.BarSeries, date time.Time) int {
	for i := len(series) - 1; i >= 0; i-- {
		if sameDay(series[i].Date, date) {
			return i
		}
	}
	return -1
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
