package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapstats-api/pkg/coins"
)

func TestSimplePricesBatches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "true", r.URL.Query().Get("include_market_cap"))
		body := make([]string, 0)
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			switch id {
			case "komodo":
				body = append(body, `"komodo":{"usd":0.25,"usd_market_cap":35000000}`)
			case "litecoin":
				body = append(body, `"litecoin":{"usd":80.5,"usd_market_cap":6000000000}`)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{" + strings.Join(body, ",") + "}"))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithBatchSize(1), WithMaxRetries(0))
	prices, err := client.SimplePrices(context.Background(), []string{"komodo", "litecoin", "komodo", "unknown-coin"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, prices, 2)
	assert.Equal(t, "0.25", prices["komodo"].USD.String())
	assert.Equal(t, "6000000000", prices["litecoin"].USDMarketCap.String())
}

func TestSimplePricesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithMaxRetries(0))
	_, err := client.SimplePrices(context.Background(), []string{"komodo"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, coins.ErrSourceUnavailable))
}

func TestProviderQuotesFanOutSharedIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"usd-coin":{"usd":1,"usd_market_cap":30000000000}}`))
	}))
	defer srv.Close()

	p := NewProvider(NewClient(WithBaseURL(srv.URL), WithMaxRetries(0)))
	quotes, err := p.Quotes(context.Background(), map[string]string{
		"USDC": "usd-coin",
		"DOC":  "",
	})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "usd-coin", quotes["USDC"].SourceID)
	assert.Equal(t, "1", quotes["USDC"].USDPrice.String())
}
