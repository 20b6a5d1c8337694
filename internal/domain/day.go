package domain

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a local calendar day in YYYY-MM-DD form. Every ticket belongs to
// exactly one day and all queries are partitioned by it.
type Day string

// DayOf returns the calendar day of t as seen from loc.
func DayOf(t time.Time, loc *time.Location) Day {
	return Day(t.In(loc).Format(dayLayout))
}

func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(s), nil
}

// DayFromDate converts a date column value back to a Day. The driver hands
// dates back as midnight UTC.
func DayFromDate(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// Date is the midnight-UTC value the driver encodes as a SQL date.
func (d Day) Date() time.Time {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d Day) String() string { return string(d) }
