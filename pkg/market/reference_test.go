package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestReferenceStripsPlatform(t *testing.T) {
	ref := NewReference(map[string]Quote{
		"KMD": {USDPrice: decimal.RequireFromString("0.25"), USDMarketCap: decimal.NewFromInt(35_000_000)},
	})
	assert.Equal(t, "0.25", ref.USDPrice("KMD-BEP20").String())
	assert.Equal(t, "35000000", ref.MarketCap("KMD").String())
	assert.True(t, ref.Priced("KMD"))
	assert.False(t, ref.Priced("DOC"))
	assert.True(t, ref.MarketCap("DOC").IsZero())

	var nilRef *Reference
	assert.True(t, nilRef.USDPrice("KMD").IsZero())
	assert.Equal(t, 0, nilRef.Len())
}
