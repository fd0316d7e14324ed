package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"swapstats-api/pkg/coins"
)

const (
	defaultBaseURL     = "https://api.coingecko.com/api/v3"
	defaultHTTPTimeout = 10 * time.Second
	defaultMaxRetries  = 3
	defaultRetryWait   = 500 * time.Millisecond
	defaultBatchSize   = 200
	apiKeyHeader       = "x-cg-pro-api-key"
)

// Client wraps the CoinGecko simple price endpoint.
type Client struct {
	http      *resty.Client
	batchSize int
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	batchSize  int
}

// WithBaseURL overrides the API root.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		if url != "" {
			o.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithAPIKey sends a pro API key with every request.
func WithAPIKey(key string) Option {
	return func(o *clientOptions) { o.apiKey = key }
}

// WithHTTPClient injects the transport, mostly for recorded tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxRetries adjusts the retry budget.
func WithMaxRetries(n int) Option {
	return func(o *clientOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithBatchSize caps the number of ids per request.
func WithBatchSize(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// NewClient constructs a CoinGecko client.
func NewClient(opts ...Option) *Client {
	o := clientOptions{
		baseURL:    defaultBaseURL,
		timeout:    defaultHTTPTimeout,
		maxRetries: defaultMaxRetries,
		batchSize:  defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(o.baseURL).
		SetTimeout(o.timeout).
		SetRetryCount(o.maxRetries).
		SetRetryWaitTime(defaultRetryWait).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	if o.apiKey != "" {
		rc.SetHeader(apiKeyHeader, o.apiKey)
	}
	return &Client{http: rc, batchSize: o.batchSize}
}

// SimplePrice is one entry of the /simple/price response.
type SimplePrice struct {
	USD          decimal.Decimal `json:"usd"`
	USDMarketCap decimal.Decimal `json:"usd_market_cap"`
}

// SimplePrices fetches USD price and market cap for the given ids.
func (c *Client) SimplePrices(ctx context.Context, ids []string) (map[string]SimplePrice, error) {
	ids = uniqueSorted(ids)
	out := make(map[string]SimplePrice, len(ids))
	for start := 0; start < len(ids); start += c.batchSize {
		end := start + c.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		var batch map[string]SimplePrice
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"ids":                strings.Join(ids[start:end], ","),
				"vs_currencies":      "usd",
				"include_market_cap": "true",
			}).
			SetResult(&batch).
			Get("/simple/price")
		if err != nil {
			return nil, fmt.Errorf("coingecko: simple price: %w: %v", coins.ErrSourceUnavailable, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("coingecko: simple price: %w: status %d", coins.ErrSourceUnavailable, resp.StatusCode())
		}
		for id, price := range batch {
			out[id] = price
		}
	}
	return out, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
