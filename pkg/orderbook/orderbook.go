package orderbook

import (
	"github.com/shopspring/decimal"

	"swapstats-api/pkg/coins"
)

// priceScale is the number of decimal places kept when taking reciprocals.
const priceScale = 18

// Entry is one resting order level.
type Entry struct {
	Price       decimal.Decimal `json:"price"`
	BaseVolume  decimal.Decimal `json:"volume"`
	QuoteVolume decimal.Decimal `json:"quote_volume"`
}

// Book is a raw orderbook for a single pair orientation.
type Book struct {
	Pair      string  `json:"pair"`
	Base      string  `json:"base"`
	Quote     string  `json:"quote"`
	Bids      []Entry `json:"bids"`
	Asks      []Entry `json:"asks"`
	Timestamp int64   `json:"timestamp"`
}

// EmptyBook returns a book for p with no levels.
func EmptyBook(p coins.Pair) Book {
	return Book{
		Pair:  p.String(),
		Base:  p.Base.Ticker(),
		Quote: p.Quote.Ticker(),
		Bids:  []Entry{},
		Asks:  []Entry{},
	}
}

// IsEmpty reports whether the book has no levels on either side.
func (b Book) IsEmpty() bool {
	return len(b.Bids) == 0 && len(b.Asks) == 0
}

// Reciprocal returns 1/d, or zero when d is zero.
func Reciprocal(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).DivRound(d, priceScale)
}

// Invert re-expresses the book in the opposite orientation. Prices become
// reciprocals, base and quote volumes swap, and bids become asks (and vice
// versa).
func Invert(b Book) Book {
	return Book{
		Pair:      reversePairString(b),
		Base:      b.Quote,
		Quote:     b.Base,
		Bids:      invertEntries(b.Asks),
		Asks:      invertEntries(b.Bids),
		Timestamp: b.Timestamp,
	}
}

func invertEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{
			Price:       Reciprocal(e.Price),
			BaseVolume:  e.QuoteVolume,
			QuoteVolume: e.BaseVolume,
		}
	}
	return out
}

func reversePairString(b Book) string {
	if b.Base != "" || b.Quote != "" {
		return b.Quote + "_" + b.Base
	}
	if p, err := coins.ParsePair(b.Pair); err == nil {
		return p.Reverse().String()
	}
	return b.Pair
}
