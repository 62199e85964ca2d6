// Package coerce converts date and datetime values between native and
// wire-safe primitive forms. Parsing is deliberately lenient: absent or
// malformed input degrades to nil instead of an error, pushing validation to
// the payload parser, which can reject a nil result derived from non-empty
// input.
package coerce

import (
	"database/sql/driver"
	"time"

	"github.com/araddon/dateparse"
)

const (
	// DateLayout is the wire form of a date-only value.
	DateLayout = "2006-01-02"
	// DateTimeLayout is the wire form of a timestamp. Timestamps are stored
	// naive in UTC, so the layout carries no zone offset.
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Date is a date-only value. It exists so the serializer can tell dates from
// timestamps when choosing a wire form.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String returns the wire form of the date.
func (d Date) String() string { return d.Format(DateLayout) }

// Value binds the date as its wire string so both drivers store it as TEXT.
func (d Date) Value() (driver.Value, error) { return d.Format(DateLayout), nil }

// ToPrimitive passes a value through unless it is a date or datetime, in
// which case it returns the ISO-8601 string form.
func ToPrimitive(v interface{}) interface{} {
	switch t := v.(type) {
	case Date:
		return t.Format(DateLayout)
	case *Date:
		if t == nil {
			return nil
		}
		return t.Format(DateLayout)
	case time.Time:
		return t.UTC().Format(DateTimeLayout)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(DateTimeLayout)
	case []byte:
		return string(t)
	default:
		return v
	}
}

// ParseDate accepts nil or the empty string (nil), a native date or datetime
// (its date part), or a string in YYYY-MM-DD form. Anything else yields nil,
// never an error.
func ParseDate(v interface{}) *Date {
	switch t := v.(type) {
	case nil:
		return nil
	case Date:
		return &t
	case *Date:
		return t
	case time.Time:
		d := NewDate(t.Year(), t.Month(), t.Day())
		return &d
	case string:
		if t == "" {
			return nil
		}
		parsed, err := time.Parse(DateLayout, t)
		if err != nil {
			return nil
		}
		d := NewDate(parsed.Year(), parsed.Month(), parsed.Day())
		return &d
	default:
		return nil
	}
}

// ParseDateLoose behaves like ParseDate but falls back to a best-effort
// natural-language parse for free-form strings ("March 2, 2020").
func ParseDateLoose(v interface{}) *Date {
	if d := ParseDate(v); d != nil {
		return d
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	d := NewDate(parsed.Year(), parsed.Month(), parsed.Day())
	return &d
}

// ParseDateTime accepts nil or the empty string (nil), a native datetime
// (converted to UTC; timestamps are stored without a zone), a Date (midnight
// UTC), or free-form date/time text parsed best-effort. Unparsable text
// yields nil.
func ParseDateTime(v interface{}) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		utc := t.UTC()
		return &utc
	case *time.Time:
		if t == nil {
			return nil
		}
		utc := t.UTC()
		return &utc
	case Date:
		utc := t.Time.UTC()
		return &utc
	case string:
		if t == "" {
			return nil
		}
		parsed, err := dateparse.ParseIn(t, time.UTC)
		if err != nil {
			return nil
		}
		utc := parsed.UTC()
		return &utc
	default:
		return nil
	}
}
