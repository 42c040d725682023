package core

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date stored as an ISO date string on the wire.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// MonthKey returns the YYYY-MM key of the date's calendar month.
func (d Date) MonthKey() MonthKey {
	return MonthKey(d.Format("2006-01"))
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or "" when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON is lenient: a missing, empty or unparseable value
// yields the zero Date instead of failing the surrounding record.
// Aggregation skips zero dates, so one bad entry cannot take the
// whole persisted collection down with it. Any time-of-day is dropped
// so that month-range filters always see calendar midnight.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		// Tolerate full timestamps from older exports.
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		d.Time = time.Time{}
		return nil
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}
