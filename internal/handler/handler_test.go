package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/rest/httpx"
	"github.com/zeromicro/go-zero/rest/pathvar"

	"swapstats-api/internal/calc"
	"swapstats-api/internal/config"
	"swapstats-api/internal/svc"
	"swapstats-api/internal/types"
	"swapstats-api/pkg/cachekit"
	"swapstats-api/pkg/coins"
	"swapstats-api/pkg/ticker"
)

func init() {
	httpx.SetErrorHandlerCtx(ErrorHandler)
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServiceContext(t *testing.T) *svc.ServiceContext {
	t.Helper()
	c := calc.New(calc.Deps{
		Store:   cachekit.MustNewMemoryStore("handler-"+t.Name(), time.Hour),
		Windows: []ticker.Window{{Days: 1}, {Days: 14}},
		Now:     func() time.Time { return testNow },
	})
	require.NoError(t, c.Register())
	return &svc.ServiceContext{
		Config: config.Config{Cache: config.CacheConf{OrderbookDepth: 50}},
		Calc:   c,
	}
}

func serve(t *testing.T, h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

func TestTickersColdReturnsTemplate(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	rec := serve(t, TickersHandler(svcCtx), httptest.NewRequest(http.MethodGet, "/api/v3/tickers?window=14d", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var set types.TickerSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.Equal(t, "14d", set.Window)
	assert.Equal(t, testNow.Unix(), set.LastUpdate)
	assert.Empty(t, set.Data)
	assert.NotNil(t, set.Data)
}

func TestTickersUnknownWindow(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	rec := serve(t, TickersHandler(svcCtx), httptest.NewRequest(http.MethodGet, "/api/v3/tickers?window=7d", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown window")
}

func TestOrderbookRejectsMalformedPair(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	for _, pair := range []string{"KMD", "KMD_KMD", "_LTC", "AVERYLONGCOINNAME_ANOTHERLONGCOINNAME"} {
		t.Run(pair, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v3/orderbook/"+pair, nil)
			r = pathvar.WithVars(r, map[string]string{"pair": pair})
			rec := serve(t, OrderbookHandler(svcCtx), r)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestOrderbookRejectsDepthOutOfRange(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	r := httptest.NewRequest(http.MethodGet, "/api/v3/orderbook/KMD_LTC?depth=20000", nil)
	r = pathvar.WithVars(r, map[string]string{"pair": "KMD_LTC"})
	rec := serve(t, OrderbookHandler(svcCtx), r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderbookColdPairReturnsCanonicalTemplate(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	r := httptest.NewRequest(http.MethodGet, "/api/v3/orderbook/LTC-segwit_KMD?depth=5", nil)
	r = pathvar.WithVars(r, map[string]string{"pair": "LTC-segwit_KMD"})
	rec := serve(t, OrderbookHandler(svcCtx), r)
	require.Equal(t, http.StatusOK, rec.Code)

	var book types.Orderbook
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	assert.Equal(t, "KMD_LTC", book.Pair)
	assert.Empty(t, book.Bids)
	assert.True(t, book.LiquidityUSD.IsZero())
}

func TestColdEntriesServeTemplates(t *testing.T) {
	svcCtx := newTestServiceContext(t)

	rec := serve(t, PairVolumesHandler(svcCtx), httptest.NewRequest(http.MethodGet, "/api/v3/volumes/pairs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"last_update":0,"window":"24hr","volumes":{}}`, rec.Body.String())

	rec = serve(t, LastTradedHandler(svcCtx), httptest.NewRequest(http.MethodGet, "/api/v3/last_traded", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = serve(t, FixerRatesHandler(svcCtx), httptest.NewRequest(http.MethodGet, "/api/v3/rates/fixer", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"base":"USD","date":"","timestamp":0,"rates":{}}`, rec.Body.String())
}

func TestCacheHealth(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	rec := serve(t, CacheHealthHandler(svcCtx), httptest.NewRequest(http.MethodGet, "/api/v3/cache/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.CacheHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Healthy)
	require.NotEmpty(t, resp.Entries)
	for _, e := range resp.Entries {
		assert.Equal(t, cachekit.StateUninitialized, e.State, e.Name)
	}
}

func TestErrorHandler(t *testing.T) {
	code, body := ErrorHandler(context.Background(), &coins.PairError{Input: "KMD", Reason: "missing separator"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.IsType(t, ErrorBody{}, body)

	code, _ = ErrorHandler(context.Background(), coins.ErrSourceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, _ = ErrorHandler(context.Background(), fmt.Errorf("%w: 7d", ticker.ErrUnknownWindow))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ErrorHandler(context.Background(), badRequest(errors.New("field depth is not set")))
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = ErrorHandler(context.Background(), errors.New("encode response: broken pipe"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, ErrorBody{Error: "encode response: broken pipe"}, body)
}
