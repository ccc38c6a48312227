// Package profiles resolves per-symbol SignalConfig overrides. A single
// shared default parameter set is unsafe for leveraged instruments, so
// recognized symbols get derived config copies with adjusted thresholds.
package profiles

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/quantfold/signalcore/internal/domain"
	"github.com/quantfold/signalcore/internal/modules/signals"
)

// Override holds per-symbol parameter adjustments. Nil fields leave the base
// value untouched; set fields replace it in the derived copy.
type Override struct {
	Profile               signals.ProfileName `yaml:"profile"`
	RSIOversold           *float64            `yaml:"rsi_oversold"`
	RSIModeratelyOversold *float64            `yaml:"rsi_moderately_oversold"`
	RSIMildlyOversold     *float64            `yaml:"rsi_mildly_oversold"`
	RSIOverbought         *float64            `yaml:"rsi_overbought"`
	MaxVolatility         *float64            `yaml:"max_volatility"`
	VolatilityAlert       *float64            `yaml:"volatility_alert"`
	OversoldBoost         *float64            `yaml:"oversold_boost"`
	TrendBoost            *float64            `yaml:"trend_boost"`
}

// Resolver maps canonical symbols to config overrides. Exact match only;
// unknown symbols pass through unchanged and never error.
type Resolver struct {
	table map[string]Override
	log   zerolog.Logger
}

// NewResolver creates a resolver preloaded with the built-in 3x-leveraged
// ETF table.
func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{
		table: builtinOverrides(),
		log:   log.With().Str("component", "profile_resolver").Logger(),
	}
}

// builtinOverrides is the recognized 3x-leveraged symbol table. Adding an
// instrument is a table entry, not a code branch.
func builtinOverrides() map[string]Override {
	leveraged := func() Override {
		cfg := signals.Leveraged3xConfig()
		return Override{
			Profile:               signals.ProfileLeveraged3x,
			RSIOversold:           &cfg.RSIOversold,
			RSIModeratelyOversold: &cfg.RSIModeratelyOversold,
			RSIMildlyOversold:     &cfg.RSIMildlyOversold,
			RSIOverbought:         &cfg.RSIOverbought,
			MaxVolatility:         &cfg.MaxVolatility,
			VolatilityAlert:       &cfg.VolatilityAlert,
			OversoldBoost:         &cfg.OversoldBoost,
		}
	}

	table := make(map[string]Override)
	for _, symbol := range []string{"TQQQ", "SOXL", "UPRO", "SPXL", "TECL", "FNGU", "LABU", "TNA"} {
		table[symbol] = leveraged()
	}
	return table
}

// LoadFile merges additional overrides from a YAML file into the table.
// Each merged entry is validated against the generic base once, here, so
// resolution itself can never produce a malformed config.
func (r *Resolver) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile overrides: %w", err)
	}

	var entries map[string]Override
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: failed to parse profile overrides: %v", domain.ErrConfiguration, err)
	}

	base := signals.GenericConfig()
	for symbol, ov := range entries {
		canonical := canonicalSymbol(symbol)
		if _, err := signals.NewSignalConfig(apply(base, ov)); err != nil {
			return fmt.Errorf("override for %s: %w", canonical, err)
		}
		r.table[canonical] = ov
	}

	r.log.Info().Int("entries", len(entries)).Str("path", path).Msg("Profile overrides loaded")
	return nil
}

// Resolve returns the effective config for a symbol as a derived copy of
// the base. The base instance is never mutated.
func (r *Resolver) Resolve(symbol string, base signals.SignalConfig) signals.SignalConfig {
	ov, ok := r.table[canonicalSymbol(symbol)]
	if !ok {
		return base
	}

	resolved := apply(base, ov)
	r.log.Debug().
		Str("symbol", symbol).
		Str("profile", string(resolved.Profile)).
		Msg("Symbol override applied")
	return resolved
}

// ProfileFor returns the profile name governing a symbol, which selects the
// regime taxonomy.
func (r *Resolver) ProfileFor(symbol string) signals.ProfileName {
	if ov, ok := r.table[canonicalSymbol(symbol)]; ok && ov.Profile != "" {
		return ov.Profile
	}
	return signals.ProfileGeneric
}

// apply merges an override into a copy of the base config.
func apply(base signals.SignalConfig, ov Override) signals.SignalConfig {
	cfg := base // value copy; base stays untouched
	if ov.Profile != "" {
		cfg.Profile = ov.Profile
	}
	if ov.RSIOversold != nil {
		cfg.RSIOversold = *ov.RSIOversold
	}
	if ov.RSIModeratelyOversold != nil {
		cfg.RSIModeratelyOversold = *ov.RSIModeratelyOversold
	}
	if ov.RSIMildlyOversold != nil {
		cfg.RSIMildlyOversold = *ov.RSIMildlyOversold
	}
	if ov.RSIOverbought != nil {
		cfg.RSIOverbought = *ov.RSIOverbought
	}
	if ov.MaxVolatility != nil {
		cfg.MaxVolatility = *ov.MaxVolatility
	}
	if ov.VolatilityAlert != nil {
		cfg.VolatilityAlert = *ov.VolatilityAlert
	}
	if ov.OversoldBoost != nil {
		cfg.OversoldBoost = *ov.OversoldBoost
	}
	if ov.TrendBoost != nil {
		cfg.TrendBoost = *ov.TrendBoost
	}
	return cfg
}

func canonicalSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
