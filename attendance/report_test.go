package attendance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timekeeper/attendance"
	"github.com/warp/timekeeper/attendance/store"
	"github.com/warp/timekeeper/calendar"
)

// workEveryScheduledDay clocks exactly 09:00-17:00 on every Mon-Fri of the month.
func workEveryScheduledDay(m *store.Memory, id attendance.EmployeeID, year int, month time.Month) {
	for _, d := range calendar.MonthPeriod(year, month).Days() {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		m.SaveClockEvent(workDay(id, d, "09:00", "17:00"))
	}
}

func TestMonthlyReport(t *testing.T) {
	// GIVEN: two punctual employees, one without a schedule, one inactive, one admin
	ctx := context.Background()
	m := store.NewMemory()

	newEmployee(m, 1, "40", mon, tue, wed, thu, fri)
	workEveryScheduledDay(m, 1, 2025, time.April)

	newEmployee(m, 2, "40", mon, tue, wed, thu, fri)
	workEveryScheduledDay(m, 2, 2025, time.April)
	drive := workDay(2, date(2025, time.April, 8), "09:00", "17:00")
	drive.CameByCar = true
	drive.KmDriven = hoursPtr("100")
	drive.ParkingCost = hoursPtr("12.40")
	m.SaveClockEvent(drive)

	newEmployee(m, 3, "40")
	newEmployee(m, 4, "40", mon)
	inactive, _ := m.Employee(ctx, 4)
	inactive.Active = false
	m.SaveEmployee(*inactive)
	m.SaveEmployee(attendance.Employee{ID: 5, Username: "admin", Role: attendance.RoleAdmin, Active: true})

	reconciler := attendance.NewReconciler(m, quietLogger(), attendance.Options{})
	reporter := attendance.NewReporter(m, reconciler, 2, quietLogger())

	// WHEN
	rows, err := reporter.MonthlyReport(ctx, 2025, time.April)
	require.NoError(t, err)

	// THEN: one row per reconcilable employee, in id order
	require.Len(t, rows, 2)
	assert.Equal(t, attendance.EmployeeID(1), rows[0].EmployeeID)
	assert.Equal(t, attendance.EmployeeID(2), rows[1].EmployeeID)

	for _, row := range rows {
		assert.Equal(t, 22, row.DaysWorked, "April 2025 has 22 weekdays")
		assertHours(t, "176", row.TotalHoursWorked)
		assertHours(t, "176", row.ExpectedHours)
		assertHours(t, "0", row.ExtraHours)
		assertHours(t, "0", row.MissingHours)
		assertHours(t, "0", row.Balance)
		assertHours(t, "40", row.ExpectedWeeklyHours)
	}

	assertHours(t, "0", rows[0].TotalKm)
	assertHours(t, "0", rows[0].KmCompensation)
	assertHours(t, "100", rows[1].TotalKm)
	assertHours(t, "23", rows[1].KmCompensation)
	assertHours(t, "12.40", rows[1].TotalParking)
}

func TestMonthlyReport_StoreErrorAbortsReport(t *testing.T) {
	m := store.NewMemory()
	newEmployee(m, 1, "40", mon, tue, wed, thu, fri)
	src := failingSource{m}

	reporter := attendance.NewReporter(src, attendance.NewReconciler(src, quietLogger(), attendance.Options{}), 0, quietLogger())

	_, err := reporter.MonthlyReport(context.Background(), 2025, time.April)
	assert.ErrorIs(t, err, errDiskGone)
}

func TestSummarize(t *testing.T) {
	emp := attendance.Employee{ID: 7, Username: "ana", Email: "ana@example.com"}
	res := attendance.BalanceResult{
		EmployeeID:          7,
		ExpectedWeeklyHours: hours("20"),
		ExtraHours:          hours("1.5"),
		MissingHours:        hours("4"),
		TotalParkingCost:    hours("3"),
		TotalKm:             hours("10"),
		Days: []attendance.DayRecord{
			{Kind: attendance.KindOvertime, HoursWorked: hours("5.5"), HoursExpected: hours("4"), BalanceChange: hours("1.5")},
			{Kind: attendance.KindSickFirst, HoursWorked: hours("0"), HoursExpected: hours("4"), BalanceChange: hours("-4")},
			{Kind: attendance.KindOffDay, HoursWorked: hours("0"), HoursExpected: hours("0"), BalanceChange: hours("0")},
		},
	}

	row := attendance.Summarize(emp, res)

	assert.Equal(t, "ana", row.Username)
	assert.Equal(t, "ana@example.com", row.Email)
	assert.Equal(t, 1, row.DaysWorked)
	assertHours(t, "5.5", row.TotalHoursWorked)
	assertHours(t, "8", row.ExpectedHours)
	assertHours(t, "-2.5", row.Balance)
	assertHours(t, "2.30", row.KmCompensation)
}

func TestBalances_KeepsFailures(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	newEmployee(m, 1, "40", mon, tue, wed, thu, fri)
	newEmployee(m, 2, "40")

	reporter := attendance.NewReporter(m, attendance.NewReconciler(m, quietLogger(), attendance.Options{}), 4, quietLogger())

	employees, results, err := reporter.Balances(ctx, calendar.MonthPeriod(2025, time.April))
	require.NoError(t, err)
	require.Len(t, employees, 2)
	require.Len(t, results, 2)

	assert.True(t, results[0].OK())
	assertHours(t, "176", results[0].MissingHours, "nobody clocked in")
	require.False(t, results[1].OK())
	assert.Equal(t, attendance.FailureNoSchedule, results[1].Failure.Code)
}

func TestBalances_ObservesEveryReconciliation(t *testing.T) {
	// GIVEN: a reconciler with an observer and two employees, one failing
	ctx := context.Background()
	m := store.NewMemory()
	newEmployee(m, 1, "40", mon, tue, wed, thu, fri)
	newEmployee(m, 2, "40")

	var mu sync.Mutex
	seen := map[attendance.EmployeeID]bool{}
	opts := attendance.Options{Observe: func(res attendance.BalanceResult, err error, _ time.Duration) {
		assert.NoError(t, err)
		mu.Lock()
		defer mu.Unlock()
		seen[res.EmployeeID] = res.OK()
	}}
	reporter := attendance.NewReporter(m, attendance.NewReconciler(m, quietLogger(), opts), 4, quietLogger())

	// WHEN: the batch runs
	_, _, err := reporter.Balances(ctx, calendar.MonthPeriod(2025, time.April))
	require.NoError(t, err)

	// THEN: both reconciliations were observed with their outcome
	assert.Equal(t, map[attendance.EmployeeID]bool{1: true, 2: false}, seen)
}
