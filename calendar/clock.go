package calendar

import (
	"fmt"
	"time"
)

// Clock is a time of day with second precision, stored as seconds after midnight.
type Clock int

// NewClock returns hh:mm:ss as a Clock.
func NewClock(hour, min, sec int) Clock {
	return Clock(hour*3600 + min*60 + sec)
}

// ParseClock accepts "15:04:05" and "15:04".
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClock(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// MustParseClock is ParseClock for literals in tests and fixtures.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Sub returns c - other. Both clocks are on the same day, so the result may be negative.
func (c Clock) Sub(other Clock) time.Duration {
	return time.Duration(c-other) * time.Second
}

func (c Clock) String() string {
	s := int(c)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
