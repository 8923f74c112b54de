/*
streak.go - Sick-day continuation

RULE:
  A run of sick/personal days is unpaid only on its first day. Every later
  day of the same run is a "continuation": paid, no balance impact.

  Two sick days belong to the same run when every day strictly between them
  is either not scheduled or a holiday. A weekend, or a public holiday on a
  Monday, does not break a run. A scheduled working day in between does.

STATE MACHINE:
  noStreak            -- Visit(d) -->  inStreak(d)   d is a first day
  inStreak(last)      -- Visit(d) -->  inStreak(d)   continuation iff no workday in (last, d)
  any                 -- Reset()  -->  noStreak      the employee showed up

  SickStreak is a value, threaded through the walk by the reconciler and
  returned by Classify. There is no shared state between reconciliations.

SEEDING:
  A run can start before the requested range (e.g. sick since last month).
  SeedSickStreak places the streak on the last pre-range workday covered by
  such an absence, so the first in-range sick day is a continuation.

SEE ALSO:
  - classify.go: Calls Visit for scheduled sick/personal days, Reset on attendance
*/
package attendance

import "github.com/warp/timekeeper/calendar"

// SickStreak is the sick-day continuation state. The zero value is noStreak.
type SickStreak struct {
	last   calendar.Date
	active bool
}

// InStreak returns the last counted sick day, if any.
func (s SickStreak) InStreak() (calendar.Date, bool) {
	return s.last, s.active
}

// Reset ends the streak.
func (s SickStreak) Reset() SickStreak {
	return SickStreak{}
}

// Visit processes sick/personal day d and reports whether it continues the streak.
func (s SickStreak) Visit(d calendar.Date, cal WorkCalendar) (continuation bool, next SickStreak) {
	next = SickStreak{last: d, active: true}
	if !s.active {
		return false, next
	}
	for gap := s.last.AddDays(1); gap.Before(d); gap = gap.AddDays(1) {
		if cal.IsWorkday(gap) {
			return false, next
		}
	}
	return true, next
}

// SeedSickStreak returns the streak state at the start of the range, derived
// from sick/personal absences that began before start and reach into the range.
func SeedSickStreak(absences []Absence, start calendar.Date, cal WorkCalendar) SickStreak {
	var seed SickStreak
	for _, a := range absences {
		if !a.Type.streaks() || !a.StartDate.Before(start) {
			continue
		}
		if a.EndWithin(start).Before(start) {
			continue
		}
		for d := a.StartDate; d.Before(start); d = d.AddDays(1) {
			if cal.IsWorkday(d) && (!seed.active || d.After(seed.last)) {
				seed = SickStreak{last: d, active: true}
			}
		}
	}
	return seed
}

// SeedWindowStart returns the earliest day the streak seed may look at:
// the start of the earliest streaking absence that began before start.
// Holidays must be known from this day on.
func SeedWindowStart(absences []Absence, start calendar.Date) calendar.Date {
	earliest := start
	for _, a := range absences {
		if a.Type.streaks() && a.StartDate.Before(earliest) && !a.EndWithin(start).Before(start) {
			earliest = a.StartDate
		}
	}
	return earliest
}
