package core

import (
	"strings"
	"time"
)

const monthLayout = "2006-01"

// MonthKey identifies a calendar month as a YYYY-MM string.
// Keys sort lexicographically in chronological order.
type MonthKey string

// ParseMonthKey validates and normalizes a YYYY-MM string.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidMonth
	}
	return MonthKey(t.Format(monthLayout)), nil
}

// MonthKeyOf returns the key for the month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.Format(monthLayout))
}

func (k MonthKey) Validate() error {
	if _, err := time.Parse(monthLayout, string(k)); err != nil {
		return ErrInvalidMonth
	}
	return nil
}

// Bounds returns the first and last calendar day of the month.
// Both bounds are inclusive.
func (k MonthKey) Bounds() (first, last Date, err error) {
	t, perr := time.Parse(monthLayout, string(k))
	if perr != nil {
		return Date{}, Date{}, ErrInvalidMonth
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return Date{Time: start}, Date{Time: end}, nil
}

// Label returns a human-readable month name, e.g. "January 2025".
// Invalid keys fall back to the raw string.
func (k MonthKey) Label() string {
	t, err := time.Parse(monthLayout, string(k))
	if err != nil {
		return string(k)
	}
	return t.Format("January 2006")
}

func (k MonthKey) String() string { return string(k) }
