package attendance_test

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/warp/timekeeper/attendance"
	"github.com/warp/timekeeper/attendance/store"
	"github.com/warp/timekeeper/calendar"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// Stored (Sunday-origin) weekdays.
const (
	sun = iota
	mon
	tue
	wed
	thu
	fri
	sat
)

func date(year int, month time.Month, day int) calendar.Date {
	return calendar.NewDate(year, month, day)
}

func hours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func hoursPtr(s string) *decimal.Decimal {
	d := hours(s)
	return &d
}

func period(start, end calendar.Date) calendar.Period {
	return calendar.Period{Start: start, End: end}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// assertHours compares decimals at 2 decimal places.
func assertHours(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, hours(want).StringFixed(2), got.StringFixed(2), msgAndArgs...)
}

// newEmployee registers an active employee with expected weekly hours and a stored schedule.
func newEmployee(m *store.Memory, id attendance.EmployeeID, weekly string, weekdays ...int) {
	m.SaveEmployee(attendance.Employee{
		ID:                  id,
		Username:            fmt.Sprintf("user%d", id),
		Email:               "user@example.com",
		Role:                attendance.RoleEmployee,
		Active:              true,
		ExpectedWeeklyHours: hoursPtr(weekly),
	})
	m.ReplaceSchedule(id, weekdays...)
}

func workDay(id attendance.EmployeeID, d calendar.Date, in, out string) attendance.ClockEvent {
	return attendance.ClockEvent{
		EmployeeID: id,
		Date:       d,
		ClockIn:    calendar.MustParseClock(in),
		ClockOut:   calendar.MustParseClock(out),
		Status:     attendance.ClockApproved,
	}
}

func absence(id attendance.EmployeeID, typ attendance.AbsenceType, start calendar.Date, end *calendar.Date) attendance.Absence {
	return attendance.Absence{
		EmployeeID: id,
		StartDate:  start,
		EndDate:    end,
		Type:       typ,
		Status:     attendance.AbsenceApproved,
	}
}

func until(d calendar.Date) *calendar.Date { return &d }

func kinds(res attendance.BalanceResult) map[string]attendance.DayKind {
	out := make(map[string]attendance.DayKind, len(res.Days))
	for _, d := range res.Days {
		out[d.Date.String()] = d.Kind
	}
	return out
}

// weekdayCalendar is Mon-Fri with optional holidays.
func weekdayCalendar(holidays ...calendar.Date) attendance.WorkCalendar {
	hs := make([]calendar.Holiday, len(holidays))
	for i, h := range holidays {
		hs[i] = calendar.Holiday{Date: h, Name: "holiday"}
	}
	return attendance.WorkCalendar{
		Weekdays: attendance.WeekdaysFromSchedule([]attendance.ScheduleEntry{
			{Weekday: mon}, {Weekday: tue}, {Weekday: wed}, {Weekday: thu}, {Weekday: fri},
		}),
		Holidays: calendar.NewHolidaySet(hs),
	}
}
