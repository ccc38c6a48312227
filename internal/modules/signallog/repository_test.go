package signallog

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/quantfold/signalcore/internal/domain"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func testRecord(symbol string, day int) Record {
	return Record{
		Symbol:     symbol,
		Date:       time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		EngineName: "signalcore",
		Signal:     domain.SignalBuy,
		Confidence: 0.7,
		Price:      101.5,
		Regime:     "RANGE_BOUND",
		Reasoning:  "RSI oversold; bounce confirmed",
		RSI:        27.5,
		Volatility: 2.1,
	}
}

func TestSaveAndReadBack(t *testing.T) {
	repo := testRepo(t)

	require.NoError(t, repo.Save(testRecord("AAPL", 1)))

	records, err := repo.BySymbol("aapl")
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, domain.SignalBuy, got.Signal)
	assert.Equal(t, 0.7, got.Confidence)
	assert.Equal(t, 101.5, got.Price)
	assert.Equal(t, "RANGE_BOUND", got.Regime)
	assert.Equal(t, 27.5, got.RSI)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got.Date)
}

func TestSaveIsIdempotentPerKey(t *testing.T) {
	repo := testRepo(t)

	rec := testRecord("TQQQ", 5)
	require.NoError(t, repo.Save(rec))

	rec.Confidence = 0.8
	require.NoError(t, repo.Save(rec), "Re-saving the same (symbol, date, engine) must replace, not duplicate")

	records, err := repo.BySymbol("TQQQ")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.8, records[0].Confidence)
}

func TestSaveRejectsIncompleteRecord(t *testing.T) {
	repo := testRepo(t)

	err := repo.Save(Record{Symbol: "", EngineName: "signalcore"})
	require.Error(t, err)
}

func TestAllAndRecent(t *testing.T) {
	repo := testRepo(t)

	for day := 1; day <= 5; day++ {
		require.NoError(t, repo.Save(testRecord("SPY", day)))
	}

	all, err := repo.All()
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.True(t, all[0].Date.Before(all[4].Date), "All returns ascending dates")

	recent, err := repo.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), recent[0].Date, "Recent returns newest first")
}
