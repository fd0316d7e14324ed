package ticker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownWindow rejects window labels that are not "24hr" or "Nd".
var ErrUnknownWindow = errors.New("ticker: unknown window")

// Window is a trailing time window measured in days.
type Window struct {
	Days int
}

// Day is the 24 hour window.
var Day = Window{Days: 1}

// Suffix labels a window of days: "24hr" for one day, "Nd" otherwise.
func Suffix(days int) string {
	if days == 1 {
		return "24hr"
	}
	return fmt.Sprintf("%dd", days)
}

// ParseSuffix is the inverse of Suffix.
func ParseSuffix(s string) (Window, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "24hr" || s == "24h" {
		return Day, nil
	}
	if days, err := strconv.Atoi(strings.TrimSuffix(s, "d")); err == nil && days > 0 && strings.HasSuffix(s, "d") {
		return Window{Days: days}, nil
	}
	return Window{}, fmt.Errorf("%w %q", ErrUnknownWindow, s)
}

// Suffix returns the window label.
func (w Window) Suffix() string { return Suffix(w.days()) }

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return time.Duration(w.days()) * 24 * time.Hour
}

// Since returns the window start relative to now.
func (w Window) Since(now time.Time) time.Time {
	return now.Add(-w.Duration())
}

func (w Window) days() int {
	if w.Days <= 0 {
		return 1
	}
	return w.Days
}

// VolumePolicy selects how base and quote USD volumes combine.
type VolumePolicy string

const (
	// PolicyHalved averages base and quote USD volume, since both sides
	// describe the same flow.
	PolicyHalved VolumePolicy = "halved"
	// PolicySummed adds both sides.
	PolicySummed VolumePolicy = "summed"
)

// ParseVolumePolicy accepts "halved" (the default when empty) or "summed".
func ParseVolumePolicy(s string) (VolumePolicy, error) {
	switch VolumePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyHalved:
		return PolicyHalved, nil
	case PolicySummed:
		return PolicySummed, nil
	default:
		return "", fmt.Errorf("ticker: unknown volume policy %q", s)
	}
}
