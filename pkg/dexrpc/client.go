// Package dexrpc queries the DEX node's JSON-RPC interface for live orderbooks.
package dexrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"swapstats-api/pkg/coins"
	"swapstats-api/pkg/orderbook"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 2
	defaultRetryWait  = 250 * time.Millisecond
	rpcVersion        = "2.0"
)

// Client issues JSON-RPC calls against a DEX node.
type Client struct {
	http     *resty.Client
	userpass string
}

// Option configures a Client.
type Option func(*Client)

// WithUserpass sets the RPC password sent with every call.
func WithUserpass(userpass string) Option {
	return func(c *Client) { c.userpass = userpass }
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithMaxRetries adjusts the transport retry budget.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.http.SetRetryCount(n)
		}
	}
}

// NewClient builds a client for the node at url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(url, "/")).
			SetTimeout(defaultTimeout).
			SetRetryCount(defaultMaxRetries).
			SetRetryWaitTime(defaultRetryWait).
			SetHeader("Content-Type", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	MMRPC    string `json:"mmrpc"`
	Method   string `json:"method"`
	Params   any    `json:"params"`
	Userpass string `json:"userpass,omitempty"`
	ID       int    `json:"id"`
}

type response struct {
	Result    json.RawMessage `json:"result"`
	Error     string          `json:"error"`
	ErrorType string          `json:"error_type"`
	ErrorData json.RawMessage `json:"error_data"`
}

// Call invokes method and decodes the result into out.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	var body response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(request{MMRPC: rpcVersion, Method: method, Params: params, Userpass: c.userpass, ID: 42}).
		Post("")
	if err != nil {
		return fmt.Errorf("dexrpc: %s: %w: %v", method, coins.ErrSourceUnavailable, err)
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return fmt.Errorf("dexrpc: %s: %w: status %d: %v", method, coins.ErrSourceUnavailable, resp.StatusCode(), err)
	}
	if body.Error != "" {
		return fmt.Errorf("dexrpc: %s: %w: %s [%s]", method, coins.ErrSourceUnavailable, body.ErrorType, strings.TrimSpace(string(body.ErrorData)))
	}
	if resp.IsError() {
		return fmt.Errorf("dexrpc: %s: %w: status %d", method, coins.ErrSourceUnavailable, resp.StatusCode())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body.Result, out); err != nil {
		return fmt.Errorf("dexrpc: %s: decode result: %w", method, err)
	}
	return nil
}

type numeric struct {
	Decimal decimal.Decimal `json:"decimal"`
}

type level struct {
	Price         numeric `json:"price"`
	BaseMaxVolume numeric `json:"base_max_volume"`
	RelMaxVolume  numeric `json:"rel_max_volume"`
}

type orderbookResult struct {
	Base      string  `json:"base"`
	Rel       string  `json:"rel"`
	Bids      []level `json:"bids"`
	Asks      []level `json:"asks"`
	Timestamp int64   `json:"timestamp"`
}

// Orderbook fetches the live book for pair. A pair whose sides differ only by
// the segwit qualifier cannot be traded and yields an empty book.
func (c *Client) Orderbook(ctx context.Context, pair coins.Pair) (orderbook.Book, error) {
	if pair.Base.Symbol == pair.Quote.Symbol && (pair.Base.IsSegwit() || pair.Quote.IsSegwit() || pair.Base == pair.Quote) {
		return orderbook.EmptyBook(pair), nil
	}
	var res orderbookResult
	params := map[string]string{"base": pair.Base.Ticker(), "rel": pair.Quote.Ticker()}
	if err := c.Call(ctx, "orderbook", params, &res); err != nil {
		logx.WithContext(ctx).Debugf("dexrpc: orderbook pair=%s err=%v", pair, err)
		return orderbook.EmptyBook(pair), err
	}
	book := orderbook.EmptyBook(pair)
	book.Timestamp = res.Timestamp
	book.Bids = toEntries(res.Bids)
	book.Asks = toEntries(res.Asks)
	return book, nil
}

func toEntries(levels []level) []orderbook.Entry {
	out := make([]orderbook.Entry, 0, len(levels))
	for _, l := range levels {
		out = append(out, orderbook.Entry{
			Price:       l.Price.Decimal,
			BaseVolume:  l.BaseMaxVolume.Decimal,
			QuoteVolume: l.RelMaxVolume.Decimal,
		})
	}
	return out
}
