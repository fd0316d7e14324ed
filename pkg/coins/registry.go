package coins

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeromicro/go-zero/core/logx"
)

// CoinConfig mirrors one entry of the upstream coins_config document.
type CoinConfig struct {
	Coin        string   `json:"coin"`
	Type        string   `json:"type"`
	Name        string   `json:"name,omitempty"`
	CoingeckoID string   `json:"coingecko_id,omitempty"`
	WalletOnly  bool     `json:"wallet_only"`
	IsTestnet   bool     `json:"is_testnet"`
	Protocol    Protocol `json:"protocol"`
}

// Protocol describes how a coin is implemented on chain.
type Protocol struct {
	Type         string       `json:"type"`
	ProtocolData ProtocolData `json:"protocol_data,omitempty"`
}

// ProtocolData carries token-specific fields.
type ProtocolData struct {
	Platform        string `json:"platform,omitempty"`
	ContractAddress string `json:"contract_address,omitempty"`
}

// Registry indexes known coins by ticker and groups them by symbol.
// A nil *Registry behaves as an empty registry.
type Registry struct {
	coins    map[string]CoinConfig
	families map[string][]Coin
}

// ParseRegistry decodes a coins_config JSON document.
func ParseRegistry(data []byte) (*Registry, error) {
	var raw map[string]CoinConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("coins: decode coins config: %w", err)
	}
	return NewRegistry(raw), nil
}

// NewRegistry builds a registry. Token entries with an invalid contract
// address are dropped; valid addresses are stored in checksum form.
func NewRegistry(configs map[string]CoinConfig) *Registry {
	r := &Registry{
		coins:    make(map[string]CoinConfig, len(configs)),
		families: make(map[string][]Coin),
	}
	for ticker, cfg := range configs {
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			continue
		}
		if cfg.Coin == "" {
			cfg.Coin = ticker
		}
		if addr := strings.TrimSpace(cfg.Protocol.ProtocolData.ContractAddress); addr != "" {
			if !common.IsHexAddress(addr) {
				logx.Errorf("coins: drop %s invalid contract address %q", ticker, addr)
				continue
			}
			cfg.Protocol.ProtocolData.ContractAddress = common.HexToAddress(addr).Hex()
		}
		r.coins[ticker] = cfg
		coin := ParseCoin(ticker)
		r.families[coin.Symbol] = append(r.families[coin.Symbol], coin)
	}
	for symbol := range r.families {
		sortCoins(r.families[symbol])
	}
	return r
}

// Len returns the number of registered tickers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.coins)
}

// Lookup returns the config for a ticker.
func (r *Registry) Lookup(ticker string) (CoinConfig, bool) {
	if r == nil {
		return CoinConfig{}, false
	}
	cfg, ok := r.coins[ticker]
	return cfg, ok
}

// Known reports whether any variant of the coin's symbol is registered.
func (r *Registry) Known(c Coin) bool {
	if r == nil {
		return false
	}
	return len(r.families[c.Symbol]) > 0
}

// Resolve returns the coin registered under ticker. Unknown tickers are
// still parsed and returned together with an error wrapping ErrUnknownCoin.
func (r *Registry) Resolve(ticker string) (Coin, error) {
	c := ParseCoin(ticker)
	if _, ok := r.Lookup(c.Ticker()); !ok {
		return c, fmt.Errorf("%w: %s", ErrUnknownCoin, ticker)
	}
	return c, nil
}

// ResolvePair checks that both sides of p are registered.
func (r *Registry) ResolvePair(p Pair) error {
	if _, err := r.Resolve(p.Base.Ticker()); err != nil {
		return err
	}
	_, err := r.Resolve(p.Quote.Ticker())
	return err
}

// Tradable lists registered coins that are neither wallet-only nor testnet.
func (r *Registry) Tradable() []Coin {
	if r == nil {
		return nil
	}
	out := make([]Coin, 0, len(r.coins))
	for ticker, cfg := range r.coins {
		if cfg.WalletOnly || cfg.IsTestnet {
			continue
		}
		out = append(out, ParseCoin(ticker))
	}
	sortCoins(out)
	return out
}

// CoingeckoIDs maps each symbol to the first non-empty coingecko id among its
// variants.
func (r *Registry) CoingeckoIDs() map[string]string {
	out := make(map[string]string)
	if r == nil {
		return out
	}
	for symbol, family := range r.families {
		for _, coin := range family {
			if id := r.coins[coin.Ticker()].CoingeckoID; id != "" {
				out[symbol] = id
				break
			}
		}
	}
	return out
}

// Configs returns a copy of the registered configs keyed by ticker.
func (r *Registry) Configs() map[string]CoinConfig {
	out := make(map[string]CoinConfig)
	if r == nil {
		return out
	}
	for k, v := range r.coins {
		out[k] = v
	}
	return out
}

func sortCoins(coins []Coin) {
	sort.Slice(coins, func(i, j int) bool { return coins[i].Ticker() < coins[j].Ticker() })
}
