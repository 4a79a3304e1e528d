package clock

import "time"

// Clock answers "what day is it" in the club's timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: time.Now}
}

// Fixed returns a clock frozen at t. Used by tests.
func Fixed(t time.Time) *Clock {
	return &Clock{loc: t.Location(), now: func() time.Time { return t }}
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today is the current calendar date at midnight UTC, the same shape lib/pq
// produces when scanning a DATE column.
func (c *Clock) Today() time.Time {
	return Date(c.Now())
}

func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
