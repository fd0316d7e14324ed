package config

import (
	"swapstats-api/pkg/market"
)

// MustLoadMarket loads etc/market.yaml from the project root and panics on error.
// It isolates the price reference config for tests that need nothing else.
func MustLoadMarket() *market.Config {
	return market.MustLoad()
}
