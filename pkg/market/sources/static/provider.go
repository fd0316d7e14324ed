// Package static serves reference quotes from a YAML file. It backs local
// development and tests where the public price API is unreachable.
package static

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"swapstats-api/pkg/market"
)

const providerType = "static"

func init() {
	market.RegisterProvider(providerType, func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		if cfg.File == "" {
			return nil, fmt.Errorf("static provider %s: file is required", name)
		}
		return Load(cfg.File)
	})
}

// Provider holds quotes keyed by symbol.
type Provider struct {
	quotes map[string]market.Quote
}

// New returns a Provider over an in-memory quote table.
func New(quotes map[string]market.Quote) *Provider {
	cp := make(map[string]market.Quote, len(quotes))
	for symbol, q := range quotes {
		cp[strings.ToUpper(symbol)] = q
	}
	return &Provider{quotes: cp}
}

// Load reads a quote table of the form `SYMBOL: {id, usd_price, usd_market_cap}`.
func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("static provider: read %s: %w", path, err)
	}
	var quotes map[string]market.Quote
	if err := yaml.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("static provider: parse %s: %w", path, err)
	}
	return New(quotes), nil
}

// Quotes returns the known quotes for the requested symbols.
func (p *Provider) Quotes(_ context.Context, ids map[string]string) (map[string]market.Quote, error) {
	out := make(map[string]market.Quote, len(ids))
	for symbol := range ids {
		if q, ok := p.quotes[strings.ToUpper(symbol)]; ok {
			out[symbol] = q
		}
	}
	return out, nil
}
