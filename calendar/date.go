/*
Package calendar provides the day-granular time primitives used by the
attendance engine.

PURPOSE:
  Attendance is reasoned about in whole calendar days: one clock event per
  day, absences that cover days, holidays that fall on days. Date strips a
  time.Time down to that granularity so dates can be compared, used as map
  keys and walked one by one without timezone surprises.

KEY TYPES:
  Date:       A calendar day, always normalized to midnight UTC
  Period:     An inclusive [Start, End] range of days (period.go)
  Clock:      A time of day, used for clock-in/clock-out (clock.go)
  HolidaySet: Company holidays keyed by Date

WEEKDAYS:
  time.Weekday is Sunday-origin (0=Sunday). Work schedules are compared in
  Monday-origin numbering (0=Monday), see Date.WorkweekDay.

SEE ALSO:
  - period.go: Period and month bounds
  - attendance/weekday.go: stored-weekday conversion
*/
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a Date.
const DateLayout = "2006-01-02"

// =============================================================================
// DATE - A calendar day
// =============================================================================

// Date is a calendar day. The zero value is January 1, year 1.
// Dates are comparable with == and usable as map keys.
type Date struct {
	t time.Time
}

// NewDate returns the date for year, month and day.
// Out-of-range values are normalized the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) Time() time.Time       { return d.t }
func (d Date) IsZero() bool          { return d.t.IsZero() }

// WorkweekDay returns the Monday-origin weekday: 0=Monday ... 6=Sunday.
func (d Date) WorkweekDay() int {
	return (int(d.t.Weekday()) + 6) % 7
}

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the number of days from `from` to `to` (negative if to is earlier).
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// MinDate returns the earlier of a and b.
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxDate returns the later of a and b.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// Holiday is a company-wide day off.
type Holiday struct {
	Date Date
	Name string
}

// HolidaySet answers "is this date a company holiday?".
type HolidaySet map[Date]string

// NewHolidaySet indexes holidays by date.
func NewHolidaySet(holidays []Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set[h.Date] = h.Name
	}
	return set
}

// Contains reports whether d is a holiday. A nil set contains nothing.
func (s HolidaySet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}
