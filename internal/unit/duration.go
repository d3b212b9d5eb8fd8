package unit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Duration is a non-negative span written in definition files as a
// human-readable string such as "30s", "5m", "1h 30m" or "2days".
type Duration time.Duration

var unitScale = map[string]time.Duration{
	"ns": time.Nanosecond, "nsec": time.Nanosecond,
	"us": time.Microsecond, "µs": time.Microsecond, "usec": time.Microsecond,
	"ms": time.Millisecond, "msec": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
	"M": month, "month": month, "months": month,
	"y": year, "year": year, "years": year,
}

// A month is 30.44 days and a year 365.25 days. "M" is a month, "m" a minute.
const (
	month = 2_630_016 * time.Second
	year  = 31_557_600 * time.Second
)

// ParseDuration parses a sequence of <integer><unit> groups, optionally
// separated by spaces. Every group must carry a unit.
func ParseDuration(s string) (time.Duration, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.HasPrefix(in, "-") {
		return 0, fmt.Errorf("%w: %q", ErrNegativeDuration, s)
	}

	var total time.Duration
	rest := in
	for rest != "" {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		digits := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
		if digits == 0 {
			return 0, fmt.Errorf("invalid duration %q: expected a number", s)
		}
		if digits < 0 {
			return 0, fmt.Errorf("invalid duration %q: missing unit", s)
		}
		n, err := strconv.ParseInt(rest[:digits], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		rest = strings.TrimLeftFunc(rest[digits:], unicode.IsSpace)

		end := strings.IndexFunc(rest, func(r rune) bool { return unicode.IsDigit(r) || unicode.IsSpace(r) })
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		scale, ok := unitScale[name]
		if !ok {
			return 0, fmt.Errorf("invalid duration %q: unknown unit %q", s, name)
		}
		if n > int64((1<<63-1)/scale) {
			return 0, fmt.Errorf("invalid duration %q: overflow", s)
		}
		step := time.Duration(n) * scale
		if total > time.Duration(1<<63-1)-step {
			return 0, fmt.Errorf("invalid duration %q: overflow", s)
		}
		total += step
		rest = rest[end:]
	}
	return total, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
