package sqlite

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timekeeper/attendance"
	"github.com/warp/timekeeper/calendar"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func day(d int) calendar.Date { return calendar.NewDate(2025, time.March, d) }

func seedEmployee(t *testing.T, s *Store, id attendance.EmployeeID, weekly *decimal.Decimal, weekdays ...int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.SaveEmployee(ctx, attendance.Employee{
		ID:                  id,
		Username:            fmt.Sprintf("emp%d", id),
		Email:               "emp@example.com",
		Role:                attendance.RoleEmployee,
		Active:              true,
		ExpectedWeeklyHours: weekly,
	}))
	require.NoError(t, s.ReplaceSchedule(ctx, id, weekdays...))
}

// =============================================================================
// EMPLOYEES AND SCHEDULES
// =============================================================================

func TestEmployee_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEmployee(t, s, 1, dec("37.5"), 1, 2, 3)

	emp, err := s.Employee(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, "emp1", emp.Username)
	assert.Equal(t, attendance.RoleEmployee, emp.Role)
	assert.True(t, emp.Active)
	require.NotNil(t, emp.ExpectedWeeklyHours)
	assert.True(t, emp.ExpectedWeeklyHours.Equal(decimal.RequireFromString("37.5")))

	missing, err := s.Employee(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing, "missing employee is (nil, nil)")
}

func TestEmployee_NullWeeklyHours(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEmployee(t, s, 1, nil, 1)

	emp, err := s.Employee(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, emp.ExpectedWeeklyHours)
}

func TestActiveEmployees_OnlyActiveEmployeeRole(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEmployee(t, s, 3, dec("40"), 1)
	seedEmployee(t, s, 1, dec("40"), 1)
	require.NoError(t, s.SaveEmployee(ctx, attendance.Employee{ID: 2, Username: "admin", Role: attendance.RoleAdmin, Active: true}))
	require.NoError(t, s.SaveEmployee(ctx, attendance.Employee{ID: 4, Username: "gone", Role: attendance.RoleEmployee, Active: false}))

	emps, err := s.ActiveEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, emps, 2)
	assert.Equal(t, attendance.EmployeeID(1), emps[0].ID)
	assert.Equal(t, attendance.EmployeeID(3), emps[1].ID)
}

func TestReplaceSchedule(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEmployee(t, s, 1, dec("40"), 1, 2, 3, 4, 5)

	// GIVEN: a Mon-Fri schedule
	// WHEN: replaced with Sat + Sun (duplicates ignored)
	require.NoError(t, s.ReplaceSchedule(ctx, 1, 6, 0, 6))

	// THEN: only the new weekdays remain
	entries, err := s.Schedule(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].Weekday)
	assert.Equal(t, 6, entries[1].Weekday)
}

func TestReplaceSchedule_RejectsOutOfRangeWeekday(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEmployee(t, s, 1, dec("40"), 1, 2)

	err := s.ReplaceSchedule(ctx, 1, 3, 7)
	require.Error(t, err)

	// The failed replacement is rolled back
	entries, err := s.Schedule(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// =============================================================================
// CLOCK EVENTS, ABSENCES, HOLIDAYS
// =============================================================================

func TestClockEvents_RangeAndUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEmployee(t, s, 1, dec("40"), 1)

	for _, d := range []int{2, 3, 10} {
		require.NoError(t, s.SaveClockEvent(ctx, attendance.ClockEvent{
			EmployeeID: 1, Date: day(d),
			ClockIn: calendar.MustParseClock("09:00"), ClockOut: calendar.MustParseClock("17:00"),
			Status: attendance.ClockPending,
		}))
	}
	// Same day again replaces the first event
	require.NoError(t, s.SaveClockEvent(ctx, attendance.ClockEvent{
		EmployeeID: 1, Date: day(3),
		ClockIn: calendar.MustParseClock("08:30"), ClockOut: calendar.MustParseClock("18:00"),
		Status: attendance.ClockApproved, CameByCar: true,
		ParkingCost: dec("4.20"), KmDriven: dec("35"),
	}))

	events, err := s.ClockEvents(ctx, 1, calendar.Period{Start: day(3), End: day(9)})
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, day(3), e.Date)
	assert.Equal(t, calendar.MustParseClock("08:30"), e.ClockIn)
	assert.Equal(t, attendance.ClockApproved, e.Status)
	assert.True(t, e.CameByCar)
	require.NotNil(t, e.ParkingCost)
	assert.True(t, e.ParkingCost.Equal(decimal.RequireFromString("4.2")))
	assert.True(t, e.Worked().Equal(decimal.RequireFromString("9.5")))
}

func TestApprovedAbsences_Overlap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEmployee(t, s, 1, dec("40"), 1)

	end := func(d int) *calendar.Date { v := day(d); return &v }
	save := func(a attendance.Absence) {
		a.EmployeeID = 1
		_, err := s.SaveAbsence(ctx, a)
		require.NoError(t, err)
	}
	save(attendance.Absence{StartDate: day(1), EndDate: end(2), Type: attendance.AbsenceSick, Status: attendance.AbsenceApproved})     // before
	save(attendance.Absence{StartDate: day(4), EndDate: end(12), Type: attendance.AbsenceVacation, Status: attendance.AbsenceApproved}) // covers
	save(attendance.Absence{StartDate: day(2), Type: attendance.AbsenceSick, Status: attendance.AbsenceApproved})                       // open-ended
	save(attendance.Absence{StartDate: day(6), EndDate: end(6), Type: attendance.AbsencePersonal, Status: attendance.AbsencePending})  // not approved
	save(attendance.Absence{StartDate: day(20), Type: attendance.AbsenceSick, Status: attendance.AbsenceApproved})                      // after

	got, err := s.ApprovedAbsences(ctx, 1, calendar.Period{Start: day(3), End: day(10)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day(2), got[0].StartDate)
	assert.Nil(t, got[0].EndDate)
	assert.Equal(t, day(4), got[1].StartDate)
	assert.Equal(t, attendance.AbsenceVacation, got[1].Type)
}

func TestSaveAbsence_SameStartDateKeepsBothRequests(t *testing.T) {
	// GIVEN: a rejected vacation request
	ctx := context.Background()
	s := newTestStore(t)
	seedEmployee(t, s, 1, dec("40"), 1)
	rejected := attendance.Absence{
		EmployeeID: 1, StartDate: day(10), EndDate: func() *calendar.Date { d := day(12); return &d }(),
		Type: attendance.AbsenceVacation, Status: attendance.AbsenceRejected,
	}
	rejectedID, err := s.SaveAbsence(ctx, rejected)
	require.NoError(t, err)

	// WHEN: a new sick request starts on the same day and is approved
	sickID, err := s.SaveAbsence(ctx, attendance.Absence{
		EmployeeID: 1, StartDate: day(10),
		Type: attendance.AbsenceSick, Status: attendance.AbsenceApproved,
	})
	require.NoError(t, err)

	// THEN: both rows exist and only the approved one is read
	assert.NotEqual(t, rejectedID, sickID)
	var count int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM absences WHERE user_id = 1").Scan(&count))
	assert.Equal(t, 2, count)

	got, err := s.ApprovedAbsences(ctx, 1, calendar.Period{Start: day(1), End: day(31)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sickID, got[0].ID)
	assert.Equal(t, attendance.AbsenceSick, got[0].Type)
}

func TestSaveAbsence_UpdateByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEmployee(t, s, 1, dec("40"), 1)

	a := attendance.Absence{EmployeeID: 1, StartDate: day(3), Type: attendance.AbsencePersonal, Status: attendance.AbsencePending}
	id, err := s.SaveAbsence(ctx, a)
	require.NoError(t, err)

	a.ID = id
	a.Status = attendance.AbsenceApproved
	got, err := s.SaveAbsence(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	approved, err := s.ApprovedAbsences(ctx, 1, calendar.Period{Start: day(3), End: day(3)})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, id, approved[0].ID)

	a.ID = id + 100
	_, err = s.SaveAbsence(ctx, a)
	assert.ErrorIs(t, err, ErrAbsenceNotFound)
}

func TestHolidays_Range(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.SaveHoliday(ctx, calendar.Holiday{Date: day(1), Name: "A"}))
	require.NoError(t, s.SaveHoliday(ctx, calendar.Holiday{Date: day(19), Name: "B"}))
	require.NoError(t, s.SaveHoliday(ctx, calendar.Holiday{Date: day(19), Name: "San José"}))
	require.NoError(t, s.SaveHoliday(ctx, calendar.Holiday{Date: day(31), Name: "C"}))
	require.NoError(t, s.DeleteHoliday(ctx, day(31)))

	got, err := s.Holidays(ctx, calendar.Period{Start: day(2), End: day(31)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "San José", got[0].Name)
}

// =============================================================================
// RECONCILIATION AGAINST SQLITE
// =============================================================================

func TestReconcile_UsesSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEmployee(t, s, 1, dec("40"), 1, 2, 3, 4, 5)
	_, err := s.SaveAbsence(ctx, attendance.Absence{
		EmployeeID: 1, StartDate: calendar.NewDate(2025, time.February, 26),
		Type: attendance.AbsenceSick, Status: attendance.AbsenceApproved,
	})
	require.NoError(t, err)
	require.NoError(t, s.SaveHoliday(ctx, calendar.Holiday{Date: day(5), Name: "Holiday"}))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	r := attendance.NewReconciler(s, logger, attendance.Options{})

	res, err := r.Reconcile(ctx, 1, calendar.Period{Start: day(3), End: day(7)})
	require.NoError(t, err)
	require.True(t, res.OK())

	kinds := make([]attendance.DayKind, 0, len(res.Days))
	for _, d := range res.Days {
		kinds = append(kinds, d.Kind)
	}
	assert.Equal(t, []attendance.DayKind{
		attendance.KindSickContinuation,
		attendance.KindSickContinuation,
		attendance.KindHoliday,
		attendance.KindSickContinuation,
		attendance.KindSickContinuation,
	}, kinds)
	assert.True(t, res.MissingHours.IsZero())
}

// =============================================================================
// REPORT RUNS
// =============================================================================

func TestReportRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	started := time.Date(2025, time.April, 1, 2, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveReportRun(ctx, ReportRun{Year: 2025, Month: time.March, Status: RunRunning, StartedAt: started}))

	done, err := s.IsReportComplete(ctx, 2025, time.March)
	require.NoError(t, err)
	assert.False(t, done)

	completed := started.Add(time.Minute)
	require.NoError(t, s.SaveReportRun(ctx, ReportRun{
		Year: 2025, Month: time.March, Status: RunCompleted,
		FilePath: "/exports/report_2025_03.csv", Rows: 12,
		StartedAt: started, CompletedAt: &completed,
	}))

	done, err = s.IsReportComplete(ctx, 2025, time.March)
	require.NoError(t, err)
	assert.True(t, done)

	runs, err := s.GetReportRuns(ctx, RunCompleted)
	require.NoError(t, err)
	require.Len(t, runs, 1, "upsert keeps one row per month")
	assert.Equal(t, time.March, runs[0].Month)
	assert.Equal(t, 12, runs[0].Rows)
	require.NotNil(t, runs[0].CompletedAt)
	assert.True(t, runs[0].CompletedAt.Equal(completed))

	runs, err = s.GetReportRuns(ctx, RunFailed)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
