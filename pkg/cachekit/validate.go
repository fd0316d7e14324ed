package cachekit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidPayload is returned when a producer result is rejected.
	ErrInvalidPayload = errors.New("cachekit: invalid payload")
	// ErrUnknownEntry is returned for names that were never registered.
	ErrUnknownEntry = errors.New("cachekit: unknown entry")
)

// Validate rejects null payloads, error-shaped objects (an object carrying
// an "error" key), and empty payloads unless allowEmpty is set.
func Validate(data json.RawMessage, allowEmpty bool) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: null", ErrInvalidPayload)
	}
	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if _, ok := obj["error"]; ok {
			return fmt.Errorf("%w: error-shaped", ErrInvalidPayload)
		}
		if len(obj) == 0 && !allowEmpty {
			return fmt.Errorf("%w: empty object", ErrInvalidPayload)
		}
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if len(arr) == 0 && !allowEmpty {
			return fmt.Errorf("%w: empty list", ErrInvalidPayload)
		}
	case '"':
		if bytes.Equal(trimmed, []byte(`""`)) && !allowEmpty {
			return fmt.Errorf("%w: empty string", ErrInvalidPayload)
		}
	}
	return nil
}
