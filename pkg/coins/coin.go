package coins

import "strings"

// PlatformSegwit is the qualifier used by segwit variants, e.g. "LTC-segwit".
const PlatformSegwit = "segwit"

// Coin identifies one on-chain variant of a logical coin.
type Coin struct {
	Symbol   string
	Platform string // empty for the native variant
}

// ParseCoin splits a ticker such as "KMD-BEP20" on its first dash.
func ParseCoin(ticker string) Coin {
	ticker = strings.TrimSpace(ticker)
	symbol, platform, _ := strings.Cut(ticker, "-")
	return Coin{Symbol: symbol, Platform: platform}
}

// Ticker renders the coin back to its ticker form.
func (c Coin) Ticker() string {
	if c.Platform == "" {
		return c.Symbol
	}
	return c.Symbol + "-" + c.Platform
}

func (c Coin) String() string { return c.Ticker() }

// IsNative reports whether the coin carries no platform qualifier.
func (c Coin) IsNative() bool { return c.Platform == "" }

// IsSegwit reports whether the coin is the segwit variant of its symbol.
func (c Coin) IsSegwit() bool { return c.Platform == PlatformSegwit }

// StripPlatform drops the platform qualifier. The result is a grouping key for
// display and aggregation; variant lookups keep using the full identity.
func StripPlatform(c Coin) Coin {
	return Coin{Symbol: c.Symbol}
}
