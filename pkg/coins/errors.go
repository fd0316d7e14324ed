package coins

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCoin marks a ticker that is absent from the coin registry.
	// Callers treat such coins as unpriced and keep going.
	ErrUnknownCoin = errors.New("coins: unknown coin")
	// ErrSourceUnavailable is returned when an upstream collaborator returned
	// nothing usable.
	ErrSourceUnavailable = errors.New("coins: source unavailable")
	// ErrMalformedPair rejects pair strings at the boundary.
	ErrMalformedPair = errors.New("coins: malformed pair")
	// ErrNumericEdgeCase flags a division by zero that was replaced with 0.
	ErrNumericEdgeCase = errors.New("coins: numeric edge case")
)

// PairError describes why a pair string was rejected.
type PairError struct {
	Input  string
	Reason string
}

func (e *PairError) Error() string {
	return fmt.Sprintf("coins: malformed pair %q: %s", e.Input, e.Reason)
}

func (e *PairError) Unwrap() error { return ErrMalformedPair }
