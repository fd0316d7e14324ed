package coingecko

import (
	"context"

	"swapstats-api/pkg/market"
)

const providerType = "coingecko"

func init() {
	market.RegisterProvider(providerType, func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []Option{
			WithBaseURL(cfg.BaseURL),
			WithAPIKey(cfg.APIKey),
			WithBatchSize(cfg.BatchSize),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.MaxRetries > 0 {
			opts = append(opts, WithMaxRetries(cfg.MaxRetries))
		}
		return NewProvider(NewClient(opts...)), nil
	})
}

// Provider adapts Client to market.Provider.
type Provider struct {
	client *Client
}

// NewProvider wraps client.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// Quotes resolves symbol ids into quotes. Symbols sharing an id share the quote.
func (p *Provider) Quotes(ctx context.Context, ids map[string]string) (map[string]market.Quote, error) {
	bySource := make(map[string][]string, len(ids))
	list := make([]string, 0, len(ids))
	for symbol, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := bySource[id]; !ok {
			list = append(list, id)
		}
		bySource[id] = append(bySource[id], symbol)
	}
	prices, err := p.client.SimplePrices(ctx, list)
	if err != nil {
		return nil, err
	}
	out := make(map[string]market.Quote, len(ids))
	for id, price := range prices {
		for _, symbol := range bySource[id] {
			out[symbol] = market.Quote{
				SourceID:     id,
				USDPrice:     price.USD,
				USDMarketCap: price.USDMarketCap,
			}
		}
	}
	return out, nil
}
