// Package fixer reads fiat exchange rates from data.fixer.io and rebases them
// to USD.
package fixer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"swapstats-api/pkg/coins"
)

const (
	defaultBaseURL = "https://data.fixer.io/api"
	defaultTimeout = 10 * time.Second
	usd            = "USD"
)

// ErrNoAPIKey is returned when the client has no access key configured.
var ErrNoAPIKey = errors.New("fixer: api key not configured")

// Rates holds fiat rates quoted against Base.
type Rates struct {
	Base      string                     `json:"base"`
	Date      string                     `json:"date"`
	Timestamp int64                      `json:"timestamp"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

type latestResponse struct {
	Success   bool                       `json:"success"`
	Base      string                     `json:"base"`
	Date      string                     `json:"date"`
	Timestamp int64                      `json:"timestamp"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	Error     *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
}

// Client talks to the fixer latest endpoint.
type Client struct {
	http   *resty.Client
	apiKey string
}

// NewClient returns a client. Zero values fall back to defaults.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)
	return &Client{http: rc, apiKey: apiKey}
}

// Latest fetches the newest rates and rebases them to USD.
func (c *Client) Latest(ctx context.Context) (*Rates, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	var body latestResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("access_key", c.apiKey).
		SetResult(&body).
		Get("/latest")
	if err != nil {
		return nil, fmt.Errorf("fixer: latest: %w: %v", coins.ErrSourceUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fixer: latest: %w: status %d", coins.ErrSourceUnavailable, resp.StatusCode())
	}
	if !body.Success {
		info := "unknown error"
		if body.Error != nil {
			info = fmt.Sprintf("%d %s", body.Error.Code, body.Error.Type)
		}
		return nil, fmt.Errorf("fixer: latest: %w: %s", coins.ErrSourceUnavailable, info)
	}
	return Rebase(&Rates{
		Base:      body.Base,
		Date:      body.Date,
		Timestamp: body.Timestamp,
		Rates:     body.Rates,
	}, usd)
}

// Rebase re-expresses rates against base.
func Rebase(r *Rates, base string) (*Rates, error) {
	if r.Base == base {
		return r, nil
	}
	pivot, ok := r.Rates[base]
	if !ok || !pivot.IsPositive() {
		return nil, fmt.Errorf("fixer: rebase: no %s rate: %w", base, coins.ErrNumericEdgeCase)
	}
	out := make(map[string]decimal.Decimal, len(r.Rates))
	for ccy, rate := range r.Rates {
		out[ccy] = rate.DivRound(pivot, 12)
	}
	out[base] = decimal.NewFromInt(1)
	return &Rates{Base: base, Date: r.Date, Timestamp: r.Timestamp, Rates: out}, nil
}
