package domain

import "time"

// Clock resolves "now" and "today" for a fixed local time zone.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c Clock) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c Clock) Time() time.Time { return c.now().In(c.loc()) }

func (c Clock) Today() Day { return DayOf(c.now(), c.loc()) }

func (c Clock) Zone() *time.Location { return c.loc() }
