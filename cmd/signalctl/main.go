// Package main is the entry point for signalctl, the offline signal engine
// runner. It reads per-symbol CSV bar files, evaluates each symbol through
// the signal engine, persists the decisions to the signal log and scores the
// log with the forward-return validator.
//
// Market-data fetching, HTTP APIs and dashboards are collaborator concerns;
// signalctl only drives the pure decision core over local files.
package main

import (
	"os"
	"sync"

	"github.com/quantfold/signalcore/internal/config"
	"github.com/quantfold/signalcore/internal/database"
	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/engine"
	"github.com/quantfold/signalcore/internal/modules/profiles"
	"github.com/quantfold/signalcore/internal/modules/signallog"
	"github.com/quantfold/signalcore/internal/modules/validation"
	"github.com/quantfold/signalcore/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Str("bars_dir", cfg.BarsDir).Str("engine", cfg.EngineName).Msg("Starting signalctl")

	resolver := profiles.NewResolver(log)
	if cfg.ProfileFile != "" {
		if err := resolver.LoadFile(cfg.ProfileFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to load profile overrides")
		}
	}

	db, err := database.Open(cfg.SignalDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open signal database")
	}
	defer db.Close()

	repo, err := signallog.NewRepository(db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize signal repository")
	}

	history, err := loadBarsDir(cfg.BarsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load bar files")
	}
	if len(history) == 0 {
		log.Fatal().Str("dir", cfg.BarsDir).Msg("No bar files found")
	}

	eng := engine.New(cfg.EngineName, resolver, log)

	// The engine is pure, so symbols evaluate in parallel.
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		decisions []engine.Decision
	)
	for symbol, bars := range history {
		wg.Add(1)
		go func(symbol string, bars domain.BarSeries) {
			defer wg.Done()

			decision, err := eng.GenerateSignal(symbol, bars, noAsOf())
			if err != nil {
				log.Error().Err(err).Str("symbol", symbol).Msg("Signal generation failed")
				return
			}

			mu.Lock()
			decisions = append(decisions, decision)
			mu.Unlock()
		}(symbol, bars)
	}
	wg.Wait()

	for _, d := range decisions {
		if err := repo.Save(signallog.NewRecord(d, cfg.EngineName)); err != nil {
			log.Error().Err(err).Str("symbol", d.Symbol).Msg("Failed to persist signal")
		}
	}

	renderDecisions(os.Stdout, decisions)

	// Score everything stored so far, not just this run.
	stored, err := repo.All()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read signal log")
	}

	session := validation.NewSession(log)
	session.Add(stored...)
	report, err := session.Score(history)
	if err != nil {
		log.Fatal().Err(err).Msg("Forward-return validation failed")
	}

	renderQualityReport(os.Stdout, report)
}
