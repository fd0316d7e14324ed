package calc

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"swapstats-api/pkg/coins"
)

func (c *Calc) coinsConfig(ctx context.Context) (any, error) {
	raw, err := c.deps.Coins.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := coins.ParseRegistry(raw)
	if err != nil {
		return nil, err
	}
	return reg.Configs(), nil
}

func (c *Calc) geckoSource(ctx context.Context) (any, error) {
	reg := c.Registry(ctx)
	if reg.Len() == 0 {
		return nil, fmt.Errorf("calc: %s needs %s: %w", EntryGeckoSource, EntryCoinsConfig, coins.ErrSourceUnavailable)
	}
	return c.deps.Prices.Quotes(ctx, reg.CoingeckoIDs())
}

func (c *Calc) fixerRates(ctx context.Context) (any, error) {
	return c.deps.Rates.Latest(ctx)
}

// NewCoinsSource reads the coins document from file when set, else from url.
func NewCoinsSource(url, file string, timeout time.Duration) CoinsSource {
	if file != "" {
		return coinsFile(file)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &coinsURL{
		url:  url,
		http: resty.New().SetTimeout(timeout).SetRetryCount(3).SetRetryWaitTime(time.Second),
	}
}

type coinsFile string

func (f coinsFile) Fetch(context.Context) ([]byte, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("calc: read coins file: %w: %v", coins.ErrSourceUnavailable, err)
	}
	return data, nil
}

type coinsURL struct {
	url  string
	http *resty.Client
}

func (u *coinsURL) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := u.http.R().SetContext(ctx).Get(u.url)
	if err != nil {
		return nil, fmt.Errorf("calc: fetch coins: %w: %v", coins.ErrSourceUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("calc: fetch coins: %w: status %d", coins.ErrSourceUnavailable, resp.StatusCode())
	}
	return resp.Body(), nil
}
