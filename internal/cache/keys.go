package cache

import (
	"strings"
	"time"

	"swapstats-api/internal/config"
)

// Namespace is the Redis key prefix for every swapstats key.
const Namespace = "swapstats"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

// Scaled applies a multiplier to a TTL class, useful for half/double TTL variants.
func (t TTLSet) Scaled(class TTLClass, factor float64) time.Duration {
	base := t.Duration(class)
	if base <= 0 || factor <= 0 {
		return base
	}
	return time.Duration(float64(base) * factor)
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// --- Cache Entry Keys -------------------------------------------------------

// EntryKey stores the envelope of a named cache entry (e.g. generic_tickers).
func EntryKey(name string) string {
	return formatKey("cache", name)
}

// --- Orderbook Keys ---------------------------------------------------------

// OrderbookKey stores the merged orderbook of a deplatformed canonical pair.
func OrderbookKey(pair string) string {
	return formatKey("orderbook", pair)
}

// OrderbookVariantKey stores the book of one variant, oriented like its
// canonical pair.
func OrderbookVariantKey(pair string) string {
	return formatKey("orderbook", "variant", pair)
}

// --- TTL Helpers ------------------------------------------------------------

// EntryRetention returns how long a cache entry survives without refreshes.
// Entries are served at any age, so this only bounds abandoned keys.
func EntryRetention() time.Duration {
	return 24 * time.Hour
}

// FetchTimeout bounds one orderbook fetch by the short TTL.
func FetchTimeout(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}

// WarmTimeout bounds one background aggregation by the medium TTL.
func WarmTimeout(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium)
}

// OrderbookTTL returns the TTL for merged orderbooks.
func OrderbookTTL(ttl TTLSet) time.Duration {
	return ttl.Scaled(TTLLong, 3) // target ~15m when long=300s
}

// OrderbookVariantTTL outlives the merged book so a merge never finds a
// variant missing.
func OrderbookVariantTTL(ttl TTLSet) time.Duration {
	return ttl.Scaled(TTLLong, 6)
}
