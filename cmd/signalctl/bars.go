package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/quantfold/signalcore/internal/domain"
)

// noAsOf returns the zero time, meaning "evaluate at the latest bar".
func noAsOf() time.Time {
	return time.Time{}
}

// loadBarsDir reads every *.csv file in dir as one symbol's bar series.
// The symbol is the upper-cased file name without extension.
func loadBarsDir(dir string) (map[string]domain.BarSeries, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list bar files: %w", err)
	}

	history := make(map[string]domain.BarSeries, len(paths))
	for _, path := range paths {
		symbol := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), ".csv"))
		bars, err := loadBarsFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		history[symbol] = bars
	}
	return history, nil
}

// loadBarsFile parses a CSV of date,open,high,low,close,volume rows (header
// required), oldest first.
func loadBarsFile(path string) (domain.BarSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	bars := make(domain.BarSeries, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		if len(row) < 6 {
			return nil, fmt.Errorf("row %d: expected 6 columns, got %d", i+2, len(row))
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad date: %w", i+2, err)
		}

		values := make([]float64, 5)
		for j := 1; j <= 5; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+2, j+1, err)
			}
			values[j-1] = v
		}

		bars = append(bars, domain.Bar{
			Date:   date,
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return bars, nil
}
