// Package codec converts temporal values between their wire strings and Go
// values. Dates use time.DateOnly, clock times time.TimeOnly, instants
// RFC 3339 and durations the time.ParseDuration syntax.
package codec

import (
	"fmt"
	"time"

	sk "github.com/reoring/skemalink"
)

// Temporal reports whether b is one of the temporal base types.
func Temporal(b sk.BaseType) bool {
	switch b {
	case sk.TypeDate, sk.TypeDateTime, sk.TypeTime, sk.TypeDuration:
		return true
	}
	return false
}

// Decode parses the wire string s as a value of base type b: a time.Time for
// date, datetime and time, a time.Duration for duration.
func Decode(b sk.BaseType, s string) (any, error) {
	switch b {
	case sk.TypeDate:
		return time.Parse(time.DateOnly, s)
	case sk.TypeDateTime:
		return ParseRFC3339(s)
	case sk.TypeTime:
		return time.Parse(time.TimeOnly, s)
	case sk.TypeDuration:
		return time.ParseDuration(s)
	}
	return nil, fmt.Errorf("codec: %s is not a temporal type", b)
}

// Encode renders v in the wire form of b. Strings are decoded first so that
// only well-formed values are passed through.
func Encode(b sk.BaseType, v any) (string, error) {
	switch x := v.(type) {
	case string:
		if _, err := Decode(b, x); err != nil {
			return "", err
		}
		return x, nil
	case time.Time:
		switch b {
		case sk.TypeDate:
			return x.Format(time.DateOnly), nil
		case sk.TypeDateTime:
			return FormatRFC3339(x), nil
		case sk.TypeTime:
			return x.Format(time.TimeOnly), nil
		}
	case time.Duration:
		if b == sk.TypeDuration {
			return x.String(), nil
		}
	}
	return "", fmt.Errorf("codec: cannot encode %T as %s", v, b)
}

// ParseRFC3339 accepts RFC3339Nano with optional fractional seconds.
func ParseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatRFC3339 normalizes t to UTC and trims trailing zero fractions.
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
