package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/timekeeper/calendar"
)

// Schedule is an employee's normalized work pattern.
type Schedule struct {
	Weekdays    WeekdaySet
	WeeklyHours decimal.Decimal
	HoursPerDay decimal.Decimal
}

// LookupSchedule derives the scheduled weekdays and hours per scheduled day.
// Returns ErrNoSchedule when there is nothing to divide by or nothing to divide.
func LookupSchedule(emp Employee, entries []ScheduleEntry) (Schedule, error) {
	weekdays := WeekdaysFromSchedule(entries)
	if len(weekdays) == 0 || emp.ExpectedWeeklyHours == nil || !emp.ExpectedWeeklyHours.IsPositive() {
		return Schedule{}, ErrNoSchedule
	}

	weekly := *emp.ExpectedWeeklyHours
	return Schedule{
		Weekdays:    weekdays,
		WeeklyHours: weekly,
		HoursPerDay: weekly.Div(decimal.NewFromInt(int64(len(weekdays)))),
	}, nil
}

// =============================================================================
// WORK CALENDAR - Schedule + holidays for one reconciliation
// =============================================================================

// WorkCalendar answers per-date questions about one employee's schedule.
type WorkCalendar struct {
	Weekdays WeekdaySet
	Holidays calendar.HolidaySet
}

func (c WorkCalendar) IsScheduled(d calendar.Date) bool {
	return c.Weekdays.Contains(d.WorkweekDay())
}

func (c WorkCalendar) IsHoliday(d calendar.Date) bool {
	return c.Holidays.Contains(d)
}

// IsWorkday reports whether d is scheduled and not a holiday, i.e. a day
// whose absence would have counted.
func (c WorkCalendar) IsWorkday(d calendar.Date) bool {
	return c.IsScheduled(d) && !c.IsHoliday(d)
}
