package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	defaultInitialBackoff = 100 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
	defaultBackoffFactor  = 2.0

	// MaxAttempts caps the total number of calls any handler makes.
	MaxAttempts = 7
)

// Config encapsulates exponential backoff settings.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	// Retryable decides whether an error is worth another attempt. Nil
	// retries everything except context cancellation and Permanent errors.
	Retryable func(error) bool
}

// Default is the budget used for database, price source and RPC fetches.
func Default() Config {
	return Config{MaxRetries: MaxAttempts - 1}
}

// Handler executes retryable operations with backoff.
type Handler struct {
	cfg Config
}

// NewHandler constructs a handler, filling unset fields with defaults and
// clamping retries to the attempt budget.
func NewHandler(cfg Config) *Handler {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = defaultBackoffFactor
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxRetries > MaxAttempts-1 {
		cfg.MaxRetries = MaxAttempts - 1
	}
	return &Handler{cfg: cfg}
}

// Attempts returns the maximum number of calls Do will make.
func (h *Handler) Attempts() int { return h.cfg.MaxRetries + 1 }

// Do executes fn with retries until it succeeds or exhausts attempts.
func (h *Handler) Do(ctx context.Context, fn func() error) error {
	var attempt int
	backoff := h.cfg.InitialBackoff

	for {
		err := fn()
		if err == nil {
			return nil
		}

		if !h.shouldRetry(err) || attempt >= h.cfg.MaxRetries {
			return unwrapPermanent(err)
		}
		attempt++

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return err
		}

		backoff = time.Duration(math.Min(
			float64(h.cfg.MaxBackoff),
			float64(backoff)*h.cfg.Multiplier,
		))
	}
}

func (h *Handler) shouldRetry(err error) bool {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	if h.cfg.Retryable != nil {
		return h.cfg.Retryable(err)
	}
	return true
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func unwrapPermanent(err error) error {
	var perm *permanentError
	if errors.As(err, &perm) {
		return perm.err
	}
	return err
}
