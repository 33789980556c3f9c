package config

import (
	"fmt"
	"strings"
	"time"
)

// Duration is a time.Duration that marshals to and from human-readable
// strings ("30s", "1h") in TOML and JSON.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		return fmt.Errorf("duration cannot be empty")
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration converts to the standard library type.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// OrDefault returns the receiver's value, or fallback when unset.
func (d *Duration) OrDefault(fallback time.Duration) time.Duration {
	if d == nil || *d == 0 {
		return fallback
	}
	return time.Duration(*d)
}
