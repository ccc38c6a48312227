// Package signallog stores generated signals keyed by (symbol, date, engine
// name). It is the data source for the offline forward-return validator and
// the CLI; publishing results to users stays a collaborator concern.
package signallog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/engine"
)

// Record is one persisted signal.
type Record struct {
	Date       time.Time         `json:"date"`
	CreatedAt  time.Time         `json:"created_at"`
	Symbol     string            `json:"symbol"`
	EngineName string            `json:"engine_name"`
	Signal     domain.SignalType `json:"signal"`
	Regime     string            `json:"regime"`
	Reasoning  string            `json:"reasoning"`
	ID         int64             `json:"id"`
	Confidence float64           `json:"confidence"`
	Price      float64           `json:"price"`
	RSI        float64           `json:"rsi"`
	Volatility float64           `json:"volatility"`
}

// NewRecord converts an engine decision into a persistable record.
func NewRecord(d engine.Decision, engineName string) Record {
	rsi, _ := d.Result.Metadata["rsi"].(float64)

	var vol float64
	if v, ok := d.Result.Metadata["volatility"].(float64); ok {
		vol = v
	}

	price, _ := d.Result.Metadata["current_price"].(float64)

	return Record{
		Symbol:     d.Symbol,
		Date:       d.Date,
		EngineName: engineName,
		Signal:     d.Result.Signal,
		Confidence: d.Result.Confidence,
		Price:      price,
		Regime:     string(d.Regime),
		Reasoning:  strings.Join(d.Result.Reasoning, "; "),
		RSI:        rsi,
		Volatility: vol,
	}
}

// signalsColumns is the list of columns for the signals table.
// Used to avoid SELECT * which can break when schema changes.
// Column order must match scanRecord() expectations.
const signalsColumns = `id, symbol, date, engine_name, signal, confidence, price, regime, reasoning, rsi, volatility, created_at`

const schema = `
CREATE TABLE IF NOT EXISTS signals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL,
	date INTEGER NOT NULL,
	engine_name TEXT NOT NULL,
	signal TEXT NOT NULL,
	confidence REAL NOT NULL,
	price REAL NOT NULL,
	regime TEXT NOT NULL DEFAULT '',
	reasoning TEXT NOT NULL DEFAULT '',
	rsi REAL NOT NULL DEFAULT 0,
	volatility REAL NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	UNIQUE(symbol, date, engine_name)
);
CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol);
`

// Repository handles signal database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a signal repository and ensures the schema exists.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create signals schema: %w", err)
	}
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "signallog").Logger(),
	}, nil
}

// Save inserts or replaces a signal record. The (symbol, date, engine_name)
// key makes re-running an evaluation idempotent.
func (r *Repository) Save(rec Record) error {
	if rec.Symbol == "" || rec.EngineName == "" {
		return fmt.Errorf("%w: signal record requires symbol and engine name", domain.ErrInvalidInput)
	}

	query := `
		INSERT OR REPLACE INTO signals
		(symbol, date, engine_name, signal, confidence, price, regime, reasoning, rsi, volatility, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		strings.ToUpper(strings.TrimSpace(rec.Symbol)),
		rec.Date.Unix(),
		rec.EngineName,
		string(rec.Signal),
		rec.Confidence,
		rec.Price,
		rec.Regime,
		rec.Reasoning,
		rec.RSI,
		rec.Volatility,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save signal: %w", err)
	}

	r.log.Debug().
		Str("symbol", rec.Symbol).
		Str("signal", string(rec.Signal)).
		Time("date", rec.Date).
		Msg("Signal saved")
	return nil
}

// BySymbol returns all signals for a symbol ordered by date ascending.
func (r *Repository) BySymbol(symbol string) ([]Record, error) {
	query := `SELECT ` + signalsColumns + ` FROM signals WHERE symbol = ? ORDER BY date ASC`
	rows, err := r.db.Query(query, strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return nil, fmt.Errorf("failed to query signals for %s: %w", symbol, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// All returns every stored signal ordered by date ascending.
func (r *Repository) All() ([]Record, error) {
	query := `SELECT ` + signalsColumns + ` FROM signals ORDER BY date ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Recent returns the most recent signals, newest first.
func (r *Repository) Recent(limit int) ([]Record, error) {
	query := `SELECT ` + signalsColumns + ` FROM signals ORDER BY date DESC LIMIT ?`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent signals: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var date, createdAt int64
		var signal string

		if err := rows.Scan(
			&rec.ID, &rec.Symbol, &date, &rec.EngineName, &signal,
			&rec.Confidence, &rec.Price, &rec.Regime, &rec.Reasoning,
			&rec.RSI, &rec.Volatility, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}

		parsed, err := domain.ParseSignalType(signal)
		if err != nil {
			return nil, err
		}
		rec.Signal = parsed
		rec.Date = time.Unix(date, 0).UTC()
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
