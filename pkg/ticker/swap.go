package ticker

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"swapstats-api/pkg/coins"
	"swapstats-api/pkg/orderbook"
)

// Side is the trade direction seen from the base holder.
type Side string

const (
	SideSell Side = "sell"
	SideBuy  Side = "buy"
)

// Swap is one historical swap record as stored by the swaps database.
type Swap struct {
	UUID        uuid.UUID       `json:"uuid"`
	MakerCoin   string          `json:"maker_coin"`
	TakerCoin   string          `json:"taker_coin"`
	MakerAmount decimal.Decimal `json:"maker_amount"`
	TakerAmount decimal.Decimal `json:"taker_amount"`
	IsSuccess   bool            `json:"is_success"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
}

// Pair returns the maker/taker pair as recorded.
func (s Swap) Pair() coins.Pair {
	return coins.NewPair(s.MakerCoin, s.TakerCoin)
}

// Trade is a swap oriented to a target pair.
type Trade struct {
	UUID        uuid.UUID
	Side        Side
	BaseVolume  decimal.Decimal
	QuoteVolume decimal.Decimal
	Price       decimal.Decimal
	Timestamp   int64
}

// Orient expresses s in target's orientation. It reports false when the
// swap does not trade target's symbols. A swap recorded against target is
// inverted and its side flips to buy. Price is zero when the base amount is
// zero.
func Orient(s Swap, target coins.Pair, caps coins.MarketCaps) (Trade, bool) {
	recorded := s.Pair()
	if !sameSymbols(recorded, target) && !sameSymbols(recorded.Reverse(), target) {
		return Trade{}, false
	}
	t := Trade{
		UUID:        s.UUID,
		Side:        SideSell,
		BaseVolume:  s.MakerAmount,
		QuoteVolume: s.TakerAmount,
		Timestamp:   s.FinishedAt.Unix(),
	}
	if coins.Opposes(recorded, target, caps) {
		t.Side = SideBuy
		t.BaseVolume, t.QuoteVolume = s.TakerAmount, s.MakerAmount
	}
	if !t.BaseVolume.IsZero() {
		t.Price = t.QuoteVolume.DivRound(t.BaseVolume, 18)
	}
	return t, true
}

func sameSymbols(a, b coins.Pair) bool {
	return a.Base.Symbol == b.Base.Symbol && a.Quote.Symbol == b.Quote.Symbol
}

// LastTrade is the most recent successful swap of a pair.
type LastTrade struct {
	Pair      string          `json:"pair"`
	UUID      string          `json:"last_swap_uuid"`
	Timestamp int64           `json:"last_swap_time"`
	Price     decimal.Decimal `json:"last_swap_price"`
}

// LastTradedMap is keyed by the pair as recorded (maker_taker).
type LastTradedMap map[string]LastTrade

// LastTradeFor finds the latest trade across every variant of target, in
// either recorded orientation. Prices recorded against target are inverted.
func LastTradeFor(target coins.Pair, variants []coins.Pair, traded LastTradedMap, caps coins.MarketCaps) LastTrade {
	best := LastTrade{Pair: target.String()}
	if len(variants) == 0 {
		variants = []coins.Pair{target}
	}
	for _, v := range variants {
		for _, candidate := range []coins.Pair{v, v.Reverse()} {
			lt, ok := traded[candidate.String()]
			if !ok || lt.Timestamp <= best.Timestamp {
				continue
			}
			price := lt.Price
			if coins.Opposes(candidate, target, caps) && !price.IsZero() {
				price = orderbook.Reciprocal(price)
			}
			best = LastTrade{Pair: target.String(), UUID: lt.UUID, Timestamp: lt.Timestamp, Price: price}
		}
	}
	return best
}
