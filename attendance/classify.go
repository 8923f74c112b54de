/*
classify.go - Day classification

PRECEDENCE (first match wins):
  1. Holiday with clock event  -> company_holiday_worked  extra += worked
  2. Holiday                   -> company_holiday         0
  3. Vacation                  -> vacation                0
  4. Scheduled + sick/personal -> <type>_first            missing += hoursPerDay
                                  <type>_continuation     0
  5. Scheduled                 -> scheduled_deficit       missing += expected - worked
                                  overtime                extra += worked - expected
                                  on_schedule             0
  6. Not scheduled             -> extra_day               extra += worked
                                  off_day                 0

  Holiday work is always a bonus, never offset against the quota. A vacation
  day never generates missing hours, scheduled or not.

STREAK:
  Step 4 consults the SickStreak. Step 5 resets it. Every other step leaves
  it as it was.
*/
package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/timekeeper/calendar"
)

// DayFacts bundles everything known about one date.
type DayFacts struct {
	Date      calendar.Date
	Holiday   bool
	Scheduled bool
	Clock     *ClockEvent // counted clock event, nil if none
	Absence   AbsenceType // approved absence covering the date, "" if none
}

// WorkedHours returns the hours of the clock event. An inverted span
// (clock-out before clock-in) counts as zero and reports malformed.
func (f DayFacts) WorkedHours() (hours decimal.Decimal, malformed bool) {
	if f.Clock == nil {
		return decimal.Zero, false
	}
	worked := f.Clock.Worked()
	if worked.IsNegative() {
		return decimal.Zero, true
	}
	return worked, false
}

const noteMalformedSpan = "Clock-out before clock-in, counted as 0 hours"

// Classify assigns exactly one DayKind to the day and returns the streak to
// carry into the next day.
func Classify(f DayFacts, hoursPerDay decimal.Decimal, streak SickStreak, cal WorkCalendar) (DayRecord, SickStreak) {
	worked, malformed := f.WorkedHours()
	rec := DayRecord{
		Date:          f.Date,
		HoursWorked:   decimal.Zero,
		HoursExpected: decimal.Zero,
		BalanceChange: decimal.Zero,
	}

	switch {
	case f.Holiday && f.Clock != nil:
		rec.Kind = KindHolidayWorked
		rec.HoursWorked = worked
		rec.BalanceChange = worked
		rec.Note = "Worked on company holiday"

	case f.Holiday:
		rec.Kind = KindHoliday
		rec.Note = "Company holiday"

	case f.Absence == AbsenceVacation:
		rec.Kind = KindVacation
		if f.Scheduled {
			rec.HoursExpected = hoursPerDay
		}

	case f.Scheduled && f.Absence.streaks():
		var continuation bool
		continuation, streak = streak.Visit(f.Date, cal)
		rec.HoursExpected = hoursPerDay
		if continuation {
			rec.Kind = continuationKind(f.Absence)
			rec.Note = "Paid " + string(f.Absence) + " day (continuation)"
		} else {
			rec.Kind = firstKind(f.Absence)
			rec.BalanceChange = hoursPerDay.Neg()
			rec.Note = "Unpaid " + string(f.Absence) + " day (first)"
		}

	case f.Scheduled:
		rec.HoursWorked = worked
		rec.HoursExpected = hoursPerDay
		switch worked.Cmp(hoursPerDay) {
		case -1:
			rec.Kind = KindScheduledDeficit
		case 1:
			rec.Kind = KindOvertime
		default:
			rec.Kind = KindOnSchedule
		}
		rec.BalanceChange = worked.Sub(hoursPerDay)
		streak = streak.Reset()

	case worked.IsPositive():
		rec.Kind = KindExtraDay
		rec.HoursWorked = worked
		rec.BalanceChange = worked

	default:
		rec.Kind = KindOffDay
	}

	if malformed && rec.Note == "" {
		rec.Note = noteMalformedSpan
	}
	return rec, streak
}

func firstKind(t AbsenceType) DayKind {
	if t == AbsencePersonal {
		return KindPersonalFirst
	}
	return KindSickFirst
}

func continuationKind(t AbsenceType) DayKind {
	if t == AbsencePersonal {
		return KindPersonalContinuation
	}
	return KindSickContinuation
}

// counts reports whether a day's clock event feeds the worked-hours, parking
// and mileage totals. Vacation days are skipped entirely.
func (k DayKind) counts() bool {
	return k != KindVacation && k != KindHoliday
}
