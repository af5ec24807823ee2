package utils

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
)

// Clock reads the system clock in the event timezone. When simulated, it
// reports times as if the wall clock had read the simulated start when the
// clock was created, which makes dry runs against past or future timetables
// possible.
type Clock struct {
	location *time.Location
	initTime time.Time
	simStart time.Time
}

func NewClock(location *time.Location) *Clock {
	return &Clock{
		location: location,
		initTime: time.Now().In(location),
	}
}

func (c *Clock) Simulate(start time.Time) {
	c.simStart = start.In(c.location)
}

func (c *Clock) Now() time.Time {
	trueTime := time.Now().In(c.location)
	if c.simStart.IsZero() {
		return trueTime
	}
	return c.simStart.Add(trueTime.Sub(c.initTime))
}

// ParseStartTime accepts an ISO 8601 timestamp (YYYY-MM-DDTHH:MM:SS, the
// event timezone is assumed) or anything the natural language parser
// understands, eg "today 9am".
func ParseStartTime(w *when.Parser, location *time.Location, text string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", text, location); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", text, location); err == nil {
		return t, nil
	}
	result, err := w.Parse(text, time.Now().In(location))
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseStartTime: %w", err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("ParseStartTime: can't make sense of %q", text)
	}
	return result.Time, nil
}
