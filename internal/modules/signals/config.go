package signals

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/quantfold/signalcore/internal/domain"
)

var validate = validator.New()

// ProfileName identifies a named SignalConfig parameter set.
type ProfileName string

const (
	// ProfileGeneric covers individual equities and unleveraged ETFs.
	ProfileGeneric ProfileName = "generic"
	// ProfileLeveraged3x covers 3x-leveraged ETFs, which need wider oversold
	// bands and a higher volatility ceiling than a shared default would give.
	ProfileLeveraged3x ProfileName = "leveraged_3x"
)

// SignalConfig is a named parameter set for the signal calculator. Instances
// are validated once at construction and read-only afterwards; symbol
// adjustment always produces a derived copy, never an in-place mutation.
type SignalConfig struct {
	Profile ProfileName `json:"profile" yaml:"profile"`

	// RSI thresholds. The oversold tiers must be ordered:
	// RSIOversold < RSIModeratelyOversold < RSIMildlyOversold < RSIOverbought.
	RSIOversold           float64 `json:"rsi_oversold" yaml:"rsi_oversold" validate:"gte=0,lte=100"`
	RSIModeratelyOversold float64 `json:"rsi_moderately_oversold" yaml:"rsi_moderately_oversold" validate:"gte=0,lte=100"`
	RSIMildlyOversold     float64 `json:"rsi_mildly_oversold" yaml:"rsi_mildly_oversold" validate:"gte=0,lte=100"`
	RSIOverbought         float64 `json:"rsi_overbought" yaml:"rsi_overbought" validate:"gte=0,lte=100"`

	// MaxVolatility is the hard gate: above it every signal becomes HOLD.
	MaxVolatility float64 `json:"max_volatility" yaml:"max_volatility" validate:"gt=0"`

	// VolatilityAlert is a second, lower threshold used by the leveraged
	// regime classifier to flag volatility expansion before the hard gate.
	VolatilityAlert float64 `json:"volatility_alert" yaml:"volatility_alert" validate:"gte=0"`

	// Confidence boosts applied after the decision table.
	OversoldBoost float64 `json:"oversold_boost" yaml:"oversold_boost" validate:"gte=0,lte=0.5"`
	TrendBoost    float64 `json:"trend_boost" yaml:"trend_boost" validate:"gte=0,lte=0.5"`
}

// NewSignalConfig validates a parameter set. This is the only place
// configuration errors are detected; evaluation never re-validates.
func NewSignalConfig(cfg SignalConfig) (SignalConfig, error) {
	if err := validate.Struct(cfg); err != nil {
		return SignalConfig{}, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	// Cross-field ordering cannot be expressed as struct tags.
	if !(cfg.RSIOversold < cfg.RSIModeratelyOversold &&
		cfg.RSIModeratelyOversold < cfg.RSIMildlyOversold &&
		cfg.RSIMildlyOversold < cfg.RSIOverbought) {
		return SignalConfig{}, fmt.Errorf(
			"%w: oversold tiers must be strictly ordered (%.1f < %.1f < %.1f < %.1f)",
			domain.ErrConfiguration,
			cfg.RSIOversold, cfg.RSIModeratelyOversold, cfg.RSIMildlyOversold, cfg.RSIOverbought)
	}
	if cfg.VolatilityAlert > cfg.MaxVolatility {
		return SignalConfig{}, fmt.Errorf(
			"%w: volatility_alert %.2f above max_volatility %.2f",
			domain.ErrConfiguration, cfg.VolatilityAlert, cfg.MaxVolatility)
	}

	return cfg, nil
}

// GenericConfig returns the default parameter set for equities and
// unleveraged ETFs.
func GenericConfig() SignalConfig {
	return SignalConfig{
		Profile:               ProfileGeneric,
		RSIOversold:           30,
		RSIModeratelyOversold: 35,
		RSIMildlyOversold:     40,
		RSIOverbought:         70,
		MaxVolatility:         8.0,
		VolatilityAlert:       5.0,
		OversoldBoost:         0.10,
		TrendBoost:            0.10,
	}
}

// Leveraged3xConfig returns the parameter set for 3x-leveraged ETFs: wider
// oversold band, narrower moderately-oversold band, higher volatility
// ceiling and a larger oversold boost.
func Leveraged3xConfig() SignalConfig {
	return SignalConfig{
		Profile:               ProfileLeveraged3x,
		RSIOversold:           35,
		RSIModeratelyOversold: 38,
		RSIMildlyOversold:     42,
		RSIOverbought:         72,
		MaxVolatility:         12.0,
		VolatilityAlert:       8.0,
		OversoldBoost:         0.15,
		TrendBoost:            0.10,
	}
}

// ConfigForProfile returns the built-in parameter set for a profile name.
// New profiles are table entries here, not new code branches elsewhere.
func ConfigForProfile(name ProfileName) (SignalConfig, error) {
	switch name {
	case ProfileGeneric:
		return GenericConfig(), nil
	case ProfileLeveraged3x:
		return Leveraged3xConfig(), nil
	default:
		return SignalConfig{}, fmt.Errorf("%w: unknown profile %q", domain.ErrConfiguration, name)
	}
}
