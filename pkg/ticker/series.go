package ticker

import "github.com/shopspring/decimal"

// priceSeries maps a unix timestamp to the trade price recorded at it. A
// later trade at the same second replaces the earlier one.
type priceSeries struct {
	points map[int64]decimal.Decimal
}

type seriesStats struct {
	highest, lowest    decimal.Decimal
	oldest, newest     decimal.Decimal
	oldestAt, newestAt int64
}

func newPriceSeries() *priceSeries {
	return &priceSeries{points: make(map[int64]decimal.Decimal)}
}

func (s *priceSeries) add(ts int64, price decimal.Decimal) {
	s.points[ts] = price
}

func (s *priceSeries) stats() (seriesStats, bool) {
	var out seriesStats
	first := true
	for ts, price := range s.points {
		if first {
			out = seriesStats{highest: price, lowest: price, oldest: price, newest: price, oldestAt: ts, newestAt: ts}
			first = false
			continue
		}
		if price.GreaterThan(out.highest) {
			out.highest = price
		}
		if price.LessThan(out.lowest) {
			out.lowest = price
		}
		if ts < out.oldestAt {
			out.oldest, out.oldestAt = price, ts
		}
		if ts > out.newestAt {
			out.newest, out.newestAt = price, ts
		}
	}
	return out, !first
}
