package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timekeeper/attendance"
	"github.com/warp/timekeeper/calendar"
)

// =============================================================================
// WEEKDAY ADAPTER
// =============================================================================

func TestToWorkweekDay(t *testing.T) {
	assert.Equal(t, 0, attendance.ToWorkweekDay(1), "Monday")
	assert.Equal(t, 6, attendance.ToWorkweekDay(0), "Sunday")
	assert.Equal(t, 5, attendance.ToWorkweekDay(6), "Saturday")

	for stored := 0; stored < 7; stored++ {
		assert.Equal(t, stored, attendance.FromWorkweekDay(attendance.ToWorkweekDay(stored)))
	}
}

func TestToWorkweekDay_AgreesWithDates(t *testing.T) {
	// 2025-03-02 is a Sunday: stored 0 .. 6 are the next seven days
	sunday := date(2025, time.March, 2)
	for stored := 0; stored < 7; stored++ {
		d := sunday.AddDays(stored)
		assert.Equal(t, int(d.Weekday()), stored)
		assert.Equal(t, d.WorkweekDay(), attendance.ToWorkweekDay(stored), d.String())
	}
}

// =============================================================================
// SCHEDULE LOOKUP
// =============================================================================

func TestLookupSchedule(t *testing.T) {
	emp := attendance.Employee{ID: 1, ExpectedWeeklyHours: hoursPtr("40")}
	entries := []attendance.ScheduleEntry{{Weekday: mon}, {Weekday: tue}, {Weekday: wed}, {Weekday: thu}, {Weekday: fri}}

	sched, err := attendance.LookupSchedule(emp, entries)
	require.NoError(t, err)
	assertHours(t, "8", sched.HoursPerDay)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, sched.Weekdays.Sorted())
}

func TestLookupSchedule_Failures(t *testing.T) {
	entries := []attendance.ScheduleEntry{{Weekday: mon}}

	_, err := attendance.LookupSchedule(attendance.Employee{ID: 1}, entries)
	assert.ErrorIs(t, err, attendance.ErrNoSchedule, "weekly hours unset")

	_, err = attendance.LookupSchedule(attendance.Employee{ID: 1, ExpectedWeeklyHours: hoursPtr("0")}, entries)
	assert.ErrorIs(t, err, attendance.ErrNoSchedule, "weekly hours zero")

	_, err = attendance.LookupSchedule(attendance.Employee{ID: 1, ExpectedWeeklyHours: hoursPtr("40")}, nil)
	assert.ErrorIs(t, err, attendance.ErrNoSchedule, "empty schedule")
}

// =============================================================================
// CLASSIFIER
// =============================================================================

func TestClassify_Precedence(t *testing.T) {
	monday := date(2025, time.March, 3)
	saturday := date(2025, time.March, 8)
	perDay := hours("8")
	cal := weekdayCalendar()
	ev := func(d calendar.Date, in, out string) *attendance.ClockEvent {
		e := workDay(1, d, in, out)
		return &e
	}

	tests := []struct {
		name    string
		facts   attendance.DayFacts
		kind    attendance.DayKind
		worked  string
		expect  string
		balance string
	}{
		{
			name:  "holiday worked is all extra",
			facts: attendance.DayFacts{Date: monday, Holiday: true, Scheduled: true, Clock: ev(monday, "09:00", "13:00")},
			kind:  attendance.KindHolidayWorked, worked: "4", expect: "0", balance: "4",
		},
		{
			name:  "holiday beats vacation",
			facts: attendance.DayFacts{Date: monday, Holiday: true, Scheduled: true, Absence: attendance.AbsenceVacation},
			kind:  attendance.KindHoliday, worked: "0", expect: "0", balance: "0",
		},
		{
			name:  "vacation on scheduled day",
			facts: attendance.DayFacts{Date: monday, Scheduled: true, Absence: attendance.AbsenceVacation},
			kind:  attendance.KindVacation, worked: "0", expect: "8", balance: "0",
		},
		{
			name:  "vacation on unscheduled day",
			facts: attendance.DayFacts{Date: saturday, Absence: attendance.AbsenceVacation},
			kind:  attendance.KindVacation, worked: "0", expect: "0", balance: "0",
		},
		{
			name:  "vacation ignores clock event",
			facts: attendance.DayFacts{Date: monday, Scheduled: true, Absence: attendance.AbsenceVacation, Clock: ev(monday, "09:00", "19:00")},
			kind:  attendance.KindVacation, worked: "0", expect: "8", balance: "0",
		},
		{
			name:  "first sick day",
			facts: attendance.DayFacts{Date: monday, Scheduled: true, Absence: attendance.AbsenceSick},
			kind:  attendance.KindSickFirst, worked: "0", expect: "8", balance: "-8",
		},
		{
			name:  "first personal day",
			facts: attendance.DayFacts{Date: monday, Scheduled: true, Absence: attendance.AbsencePersonal},
			kind:  attendance.KindPersonalFirst, worked: "0", expect: "8", balance: "-8",
		},
		{
			name:  "deficit",
			facts: attendance.DayFacts{Date: monday, Scheduled: true, Clock: ev(monday, "09:00", "15:30")},
			kind:  attendance.KindScheduledDeficit, worked: "6.5", expect: "8", balance: "-1.5",
		},
		{
			name:  "missed scheduled day",
			facts: attendance.DayFacts{Date: monday, Scheduled: true},
			kind:  attendance.KindScheduledDeficit, worked: "0", expect: "8", balance: "-8",
		},
		{
			name:  "overtime",
			facts: attendance.DayFacts{Date: monday, Scheduled: true, Clock: ev(monday, "08:00", "18:15")},
			kind:  attendance.KindOvertime, worked: "10.25", expect: "8", balance: "2.25",
		},
		{
			name:  "on schedule",
			facts: attendance.DayFacts{Date: monday, Scheduled: true, Clock: ev(monday, "09:00", "17:00")},
			kind:  attendance.KindOnSchedule, worked: "8", expect: "8", balance: "0",
		},
		{
			name:  "extra day",
			facts: attendance.DayFacts{Date: saturday, Clock: ev(saturday, "10:00", "13:00")},
			kind:  attendance.KindExtraDay, worked: "3", expect: "0", balance: "3",
		},
		{
			name:  "sick on unscheduled day is off",
			facts: attendance.DayFacts{Date: saturday, Absence: attendance.AbsenceSick},
			kind:  attendance.KindOffDay, worked: "0", expect: "0", balance: "0",
		},
		{
			name:  "off day",
			facts: attendance.DayFacts{Date: saturday},
			kind:  attendance.KindOffDay, worked: "0", expect: "0", balance: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := attendance.Classify(tt.facts, perDay, attendance.SickStreak{}, cal)
			assert.Equal(t, tt.kind, rec.Kind)
			assertHours(t, tt.worked, rec.HoursWorked, "worked")
			assertHours(t, tt.expect, rec.HoursExpected, "expected")
			assertHours(t, tt.balance, rec.BalanceChange, "balance change")
		})
	}
}

func TestClassify_StreakResetOnlyByAttendance(t *testing.T) {
	cal := weekdayCalendar()
	monday := date(2025, time.March, 3)
	_, inStreak := attendance.SickStreak{}.Visit(monday.AddDays(-3), cal)

	// GIVEN: an active streak
	// WHEN: the employee shows up on a scheduled day
	// THEN: the streak ends
	attended := workDay(1, monday, "09:00", "17:00")
	_, after := attendance.Classify(attendance.DayFacts{Date: monday, Scheduled: true, Clock: &attended}, hours("8"), inStreak, cal)
	_, active := after.InStreak()
	assert.False(t, active, "on_schedule resets")

	_, after = attendance.Classify(attendance.DayFacts{Date: monday, Scheduled: true}, hours("8"), inStreak, cal)
	_, active = after.InStreak()
	assert.False(t, active, "scheduled_deficit resets")

	// Off days, extra days, holidays and vacation leave it alone
	saturday := date(2025, time.March, 8)
	extra := workDay(1, saturday, "09:00", "12:00")
	for _, f := range []attendance.DayFacts{
		{Date: saturday},
		{Date: saturday, Clock: &extra},
		{Date: monday, Holiday: true, Scheduled: true},
		{Date: monday, Scheduled: true, Absence: attendance.AbsenceVacation},
	} {
		_, after = attendance.Classify(f, hours("8"), inStreak, cal)
		assert.Equal(t, inStreak, after)
	}
}

func TestClassify_InvertedClockSpanCountsZero(t *testing.T) {
	monday := date(2025, time.March, 3)
	inverted := workDay(1, monday, "17:00", "09:00")

	rec, _ := attendance.Classify(attendance.DayFacts{Date: monday, Scheduled: true, Clock: &inverted}, hours("8"), attendance.SickStreak{}, weekdayCalendar())

	assert.Equal(t, attendance.KindScheduledDeficit, rec.Kind)
	assertHours(t, "0", rec.HoursWorked)
	assertHours(t, "-8", rec.BalanceChange)
	assert.NotEmpty(t, rec.Note)
}
