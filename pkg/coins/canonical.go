package coins

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MarketCaps supplies USD market caps keyed by symbol. Unknown symbols
// report zero.
type MarketCaps interface {
	MarketCap(symbol string) decimal.Decimal
}

// Canonical orders a pair deterministically. Coins with a known cap sort
// ascending by cap, so the lower cap becomes base. A coin without a cap sorts
// before any coin that has one. Remaining ties are broken lexically.
func Canonical(p Pair, caps MarketCaps) Pair {
	if less(p.Quote, p.Base, caps) {
		return p.Reverse()
	}
	return p
}

// IsReversed reports whether p differs from its canonical form.
func IsReversed(p Pair, caps MarketCaps) bool {
	return Canonical(p, caps) != p
}

// UniqueCanonical canonicalises every pair and removes duplicates. With
// deplatform set, pairs are first reduced to their root symbols and pairs
// of one symbol against itself are dropped.
func UniqueCanonical(pairs []Pair, caps MarketCaps, deplatform bool) []Pair {
	seen := make(map[Pair]struct{}, len(pairs))
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if deplatform {
			p = p.Deplatform()
		}
		if p.Base == p.Quote {
			continue
		}
		c := Canonical(p, caps)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	SortPairs(out)
	return out
}

func capOf(c Coin, caps MarketCaps) decimal.Decimal {
	if caps == nil {
		return decimal.Zero
	}
	mc := caps.MarketCap(c.Symbol)
	if mc.IsNegative() {
		return decimal.Zero
	}
	return mc
}

// less is a strict total order over coins: unknown cap first, then cap
// ascending, then symbol, then full ticker.
func less(a, b Coin, caps MarketCaps) bool {
	capA, capB := capOf(a, caps), capOf(b, caps)
	knownA, knownB := capA.IsPositive(), capB.IsPositive()
	if knownA != knownB {
		return !knownA
	}
	if knownA {
		if cmp := capA.Cmp(capB); cmp != 0 {
			return cmp < 0
		}
	}
	if cmp := strings.Compare(a.Symbol, b.Symbol); cmp != 0 {
		return cmp < 0
	}
	return a.Ticker() < b.Ticker()
}

// Opposes reports whether v is oriented against target, so that v has to be
// inverted before it can be combined with data in target's orientation.
func Opposes(v, target Pair, caps MarketCaps) bool {
	if v.Base.Symbol != v.Quote.Symbol {
		return v.Base.Symbol == target.Quote.Symbol && v.Quote.Symbol == target.Base.Symbol
	}
	return IsReversed(v, caps) != IsReversed(target, caps)
}
