package market_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	market "swapstats-api/pkg/market"
	_ "swapstats-api/pkg/market/sources/coingecko"
)

// Ensures env placeholders are expanded and durations parsed.
func TestMarketConfig_EnvExpansionAndDurations(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BASE_URL_VAR", "https://pro-api.coingecko.test/api/v3")
	t.Setenv("CG_KEY", "secret")
	t.Setenv("TOUT", "9s")

	yaml := []byte(`
default: cg
providers:
  cg:
    type: coingecko
    base_url: ${BASE_URL_VAR}
    api_key: ${CG_KEY}
    timeout: ${TOUT}
`)
	path := filepath.Join(dir, "market.yaml")
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	cfg, err := market.LoadConfig(path)
	require.NoError(t, err)
	p := cfg.Providers["cg"]
	require.NotNil(t, p)
	assert.Equal(t, "https://pro-api.coingecko.test/api/v3", p.BaseURL)
	assert.Equal(t, "secret", p.APIKey)
	assert.Equal(t, "9s", p.Timeout.String())
}
