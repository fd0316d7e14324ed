package calc

import (
	"context"
	"time"

	"swapstats-api/pkg/cachekit"
	"swapstats-api/pkg/ticker"
)

// Cache entry names.
const (
	EntryCoinsConfig           = "coins_config"
	EntryGeckoSource           = "gecko_source"
	EntryFixerRates            = "fixer_rates"
	EntryPairLastTraded        = "pair_last_traded"
	EntryPairOrderbookExtended = "pair_orderbook_extended"
	EntryPairVolumes24hr       = "pair_volumes_24hr"
	EntryCoinVolumes24hr       = "coin_volumes_24hr"
	EntryTickersSummary        = "tickers_summary"

	tickersPrefix = "generic_tickers"
)

// TickersEntry names the ticker entry of a window: generic_tickers for the
// daily window, generic_tickers_<suffix> otherwise.
func TickersEntry(w ticker.Window) string {
	if w.Days <= 1 {
		return tickersPrefix
	}
	return tickersPrefix + "_" + w.Suffix()
}

// Entries returns the catalogue in refresh order: upstream sources first,
// then computed entries, then composites.
func (c *Calc) Entries() []cachekit.EntryConfig {
	out := []cachekit.EntryConfig{
		{Name: EntryCoinsConfig, Class: cachekit.ClassUpstream, ExpiryMinutes: 1440, Interval: 24 * time.Hour, Producer: c.coinsConfig},
		{Name: EntryGeckoSource, Class: cachekit.ClassUpstream, ExpiryMinutes: 15, Interval: 5 * time.Minute, Producer: c.geckoSource},
	}
	if c.deps.Rates != nil {
		out = append(out, cachekit.EntryConfig{
			Name: EntryFixerRates, Class: cachekit.ClassUpstream, ExpiryMinutes: 15, Interval: 15 * time.Minute, Producer: c.fixerRates,
		})
	}
	out = append(out,
		cachekit.EntryConfig{Name: EntryPairLastTraded, Class: cachekit.ClassComputed, ExpiryMinutes: 5, Interval: time.Minute, AllowEmpty: true, Producer: c.pairLastTraded},
		cachekit.EntryConfig{Name: EntryPairOrderbookExtended, Class: cachekit.ClassComputed, ExpiryMinutes: 15, Interval: time.Minute, AllowEmpty: true, Producer: c.pairOrderbookExtended},
		cachekit.EntryConfig{Name: EntryPairVolumes24hr, Class: cachekit.ClassComputed, ExpiryMinutes: 15, Interval: time.Minute, AllowEmpty: true, Producer: c.pairVolumes},
		cachekit.EntryConfig{Name: EntryCoinVolumes24hr, Class: cachekit.ClassComputed, ExpiryMinutes: 15, Interval: time.Minute, AllowEmpty: true, Producer: c.coinVolumes},
	)
	for _, w := range c.deps.Windows {
		w := w
		interval := time.Minute
		if w.Days > 1 {
			interval = 5 * time.Minute
		}
		out = append(out, cachekit.EntryConfig{
			Name: TickersEntry(w), Class: cachekit.ClassComputed, ExpiryMinutes: 5, Interval: interval, AllowEmpty: true,
			Producer: func(ctx context.Context) (any, error) { return c.genericTickers(ctx, w) },
		})
	}
	out = append(out, cachekit.EntryConfig{
		Name: EntryTickersSummary, Class: cachekit.ClassComposite, ExpiryMinutes: 5, Interval: time.Minute, AllowEmpty: true, Producer: c.tickersSummary,
	})
	for i := range out {
		out[i].Interval = c.deps.interval(out[i].Name, out[i].Interval)
		out[i].Retention = c.deps.Retention
	}
	return out
}
