package coins

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxPairLength bounds the accepted length of a pair string.
const MaxPairLength = 32

// Pair is an ordered (base, quote) tuple.
type Pair struct {
	Base  Coin
	Quote Coin
}

// NewPair builds a pair from two tickers without validation.
func NewPair(base, quote string) Pair {
	return Pair{Base: ParseCoin(base), Quote: ParseCoin(quote)}
}

// ParsePair validates and parses strings like "KMD_LTC-segwit".
func ParsePair(input string) (Pair, error) {
	raw := strings.TrimSpace(input)
	switch {
	case raw == "":
		return Pair{}, &PairError{Input: input, Reason: "empty"}
	case utf8.RuneCountInString(raw) > MaxPairLength:
		return Pair{}, &PairError{Input: input, Reason: "too long"}
	case !strings.Contains(raw, "_"):
		return Pair{}, &PairError{Input: input, Reason: "missing '_' separator"}
	}
	parts := strings.Split(raw, "_")
	if len(parts) != 2 {
		return Pair{}, &PairError{Input: input, Reason: "expected exactly two coins"}
	}
	if strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return Pair{}, &PairError{Input: input, Reason: "empty coin"}
	}
	if parts[0] == parts[1] {
		return Pair{}, &PairError{Input: input, Reason: "base equals quote"}
	}
	return NewPair(parts[0], parts[1]), nil
}

func (p Pair) String() string {
	return p.Base.Ticker() + "_" + p.Quote.Ticker()
}

// Reverse swaps base and quote.
func (p Pair) Reverse() Pair {
	return Pair{Base: p.Quote, Quote: p.Base}
}

// Deplatform strips the platform qualifier from both sides.
func (p Pair) Deplatform() Pair {
	return Pair{Base: StripPlatform(p.Base), Quote: StripPlatform(p.Quote)}
}

// SortPairs orders pairs by their string form.
func SortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].String() < pairs[j].String() })
}
