package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"swapstats-api/internal/config"
	"swapstats-api/pkg/confkit"
	"swapstats-api/pkg/market"
)

func TestConfigSummaryLines(t *testing.T) {
	assert.Equal(t, []string{"Configuration: <nil>"}, ConfigSummaryLines(nil))

	cfg := &config.Config{
		Env:     "dev",
		TTL:     config.CacheTTL{Short: 10, Medium: 60, Long: 300},
		Windows: []int{1, 14},
		DexRPC:  config.DexRPCConf{URL: "http://127.0.0.1:7783"},
		Coins:   config.CoinsConf{URL: "https://example.com/coins_config.json"},
		Market:  confkit.Section[market.Config]{File: "market.yaml"},
	}
	cfg.Cache.VolumePolicy = "summed"
	lines := ConfigSummaryLines(cfg)
	assert.Contains(t, lines, "Environment: dev")
	assert.Contains(t, lines, "Postgres: not configured")
	assert.Contains(t, lines, "Volume policy: summed")
	assert.Contains(t, lines, "Coins config: https://example.com/coins_config.json")
	assert.Contains(t, lines, "Market config: market.yaml")
	assert.Contains(t, lines, "Ticker windows (days): [1 14]")
}
