package coins

// VariantsOf returns the coin together with its registered variants, sorted by
// ticker. With segwitOnly set, platform-token wrappings are excluded and only
// the native and segwit forms remain. Unknown symbols yield just the coin.
func (r *Registry) VariantsOf(c Coin, segwitOnly bool) []Coin {
	seen := map[string]struct{}{c.Ticker(): {}}
	out := []Coin{c}
	if r == nil {
		return out
	}
	for _, v := range r.families[c.Symbol] {
		if segwitOnly && !v.IsNative() && !v.IsSegwit() {
			continue
		}
		if _, ok := seen[v.Ticker()]; ok {
			continue
		}
		seen[v.Ticker()] = struct{}{}
		out = append(out, v)
	}
	sortCoins(out)
	return out
}

// PairVariants is the cross product of both sides' variants, minus pairs
// whose base and quote are the same coin once platforms are stripped. The
// result is sorted and contains the input pair unless both sides belong to
// one coin, in which case it is empty.
func (r *Registry) PairVariants(p Pair, segwitOnly bool) []Pair {
	bases := r.VariantsOf(p.Base, segwitOnly)
	quotes := r.VariantsOf(p.Quote, segwitOnly)
	out := make([]Pair, 0, len(bases)*len(quotes))
	for _, b := range bases {
		for _, q := range quotes {
			if StripPlatform(b) == StripPlatform(q) {
				continue
			}
			out = append(out, Pair{Base: b, Quote: q})
		}
	}
	SortPairs(out)
	return out
}

// PairVariantStrings is PairVariants rendered as strings.
func (r *Registry) PairVariantStrings(p Pair, segwitOnly bool) []string {
	pairs := r.PairVariants(p, segwitOnly)
	out := make([]string, len(pairs))
	for i, v := range pairs {
		out[i] = v.String()
	}
	return out
}
