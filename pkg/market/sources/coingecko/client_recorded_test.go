package coingecko

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
)

// This test uses go-vcr to record/replay a real simple price call.
// It skips by default if cassette is absent and RECORD_CASSETTES != 1.
func TestClient_SimplePrices_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "coingecko_simple_price.yaml")
	if _, err := os.Stat(cassette); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s", cassette)
		}
		err := os.MkdirAll(filepath.Dir(cassette), 0o755)
		assert.NoError(t, err, "mkdir cassettes dir should succeed")
	}

	r, err := recorder.New(cassette)
	assert.NoError(t, err, "recorder.New should not error")
	defer func() { _ = r.Stop() }()

	client := NewClient(WithHTTPClient(&http.Client{Transport: r}))
	prices, err := client.SimplePrices(context.Background(), []string{"komodo", "litecoin"})
	assert.NoError(t, err, "SimplePrices should not error")
	assert.True(t, prices["komodo"].USD.IsPositive(), "komodo price should be positive")
	assert.True(t, prices["litecoin"].USDMarketCap.IsPositive(), "litecoin cap should be positive")
}
