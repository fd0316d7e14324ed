package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"swapstats-api/pkg/coins"
	"swapstats-api/pkg/ticker"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

var errBadRequest = errors.New("bad request")

// badRequest marks a request decoding failure.
func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// ErrorHandler maps request errors to status codes: rejected input is 400,
// an unavailable source is 503 and anything else is 500. Install it with
// httpx.SetErrorHandlerCtx.
func ErrorHandler(_ context.Context, err error) (int, any) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, coins.ErrMalformedPair),
		errors.Is(err, ticker.ErrUnknownWindow):
		code = http.StatusBadRequest
	case errors.Is(err, coins.ErrSourceUnavailable):
		code = http.StatusServiceUnavailable
	}
	return code, ErrorBody{Error: err.Error()}
}
