package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/signalcore/internal/modules/signals"
)

func testResolver() *Resolver {
	return NewResolver(zerolog.Nop())
}

func TestResolve_UnknownSymbolPassesThrough(t *testing.T) {
	base := signals.GenericConfig()

	resolved := testResolver().Resolve("AAPL", base)
	assert.Equal(t, base, resolved)
}

func TestResolve_LeveragedSymbols(t *testing.T) {
	r := testResolver()
	base := signals.GenericConfig()
	expected := signals.Leveraged3xConfig()

	for _, symbol := range []string{"TQQQ", "SOXL", "UPRO", "SPXL", "TECL", "FNGU", "LABU", "TNA"} {
		resolved := r.Resolve(symbol, base)
		assert.Equal(t, signals.ProfileLeveraged3x, resolved.Profile, symbol)
		assert.Equal(t, expected.RSIOversold, resolved.RSIOversold, symbol)
		assert.Equal(t, expected.MaxVolatility, resolved.MaxVolatility, symbol)
		assert.Equal(t, expected.OversoldBoost, resolved.OversoldBoost, symbol)
	}
}

func TestResolve_CanonicalizesSymbol(t *testing.T) {
	resolved := testResolver().Resolve(" tqqq ", signals.GenericConfig())
	assert.Equal(t, signals.ProfileLeveraged3x, resolved.Profile)
}

func TestResolve_NeverMutatesBase(t *testing.T) {
	base := signals.GenericConfig()
	pristine := signals.GenericConfig()

	r := testResolver()
	_ = r.Resolve("TQQQ", base)
	_ = r.Resolve("SOXL", base)

	assert.Equal(t, pristine, base, "Resolution must derive a copy, never mutate the base config")
}

func TestProfileFor(t *testing.T) {
	r := testResolver()

	assert.Equal(t, signals.ProfileLeveraged3x, r.ProfileFor("TQQQ"))
	assert.Equal(t, signals.ProfileGeneric, r.ProfileFor("MSFT"))
}

func TestLoadFile_MergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `
VXX:
  rsi_oversold: 25
  max_volatility: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r := testResolver()
	require.NoError(t, r.LoadFile(path))

	resolved := r.Resolve("VXX", signals.GenericConfig())
	assert.Equal(t, 25.0, resolved.RSIOversold)
	assert.Equal(t, 10.0, resolved.MaxVolatility)
	// Untouched fields keep their base values.
	assert.Equal(t, signals.GenericConfig().RSIOverbought, resolved.RSIOverbought)
}

func TestLoadFile_RejectsMalformedOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `
BAD:
  rsi_oversold: 150
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	err := testResolver().LoadFile(path)
	require.Error(t, err)
}

func TestLoadFile_MissingFile(t *testing.T) {
	err := testResolver().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
