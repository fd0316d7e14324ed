package static

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndQuote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
KMD:
  id: komodo
  usd_price: "0.25"
  usd_market_cap: "35000000"
ltc:
  id: litecoin
  usd_price: "80.5"
  usd_market_cap: "6000000000"
`), 0o600))

	p, err := Load(path)
	require.NoError(t, err)

	quotes, err := p.Quotes(context.Background(), map[string]string{"KMD": "komodo", "LTC": "", "DOC": ""})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "0.25", quotes["KMD"].USDPrice.String())
	assert.Equal(t, "litecoin", quotes["LTC"].SourceID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
