/*
Package attendance implements the attendance and leave balance reconciliation engine.

PURPOSE:
  For one employee and a date range, walk every calendar day, classify it
  (holiday, vacation, sick, worked on schedule, missed, worked off schedule,
  off) and produce an hours balance: extra hours minus missing hours.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee, ScheduleEntry, ClockEvent, Absence: read-only inputs
  - DayKind, DayRecord: one classified day
  - BalanceResult: the outcome of a reconciliation, never persisted

PRECISION:
  Hours, parking costs and kilometers are decimal.Decimal and accumulated at
  full precision. Rounding to 2 places is a presentation concern (api DTOs,
  export writers) and never happens inside the engine.

FLOW:
  Source (snapshot read) -> LookupSchedule -> SeedSickStreak
    -> Classify per day (threading SickStreak) -> BalanceResult
    -> Reporter reduces one result per employee into a MonthlyRow

SEE ALSO:
  - classify.go: Day classification precedence
  - streak.go: Sick-day continuation state machine
  - reconcile.go: The day-by-day walk
  - report.go: Monthly aggregation
*/
package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/timekeeper/calendar"
)

// =============================================================================
// IDENTIFIERS & ENUMS
// =============================================================================

type EmployeeID int64

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

type ClockStatus string

const (
	ClockPending  ClockStatus = "pending"
	ClockApproved ClockStatus = "approved"
)

type AbsenceType string

const (
	AbsenceSick     AbsenceType = "sick"
	AbsencePersonal AbsenceType = "personal"
	AbsenceVacation AbsenceType = "vacation"
)

// streaks reports whether the absence type takes part in sick-day continuation.
func (t AbsenceType) streaks() bool {
	return t == AbsenceSick || t == AbsencePersonal
}

type AbsenceStatus string

const (
	AbsencePending  AbsenceStatus = "pending"
	AbsenceApproved AbsenceStatus = "approved"
	AbsenceRejected AbsenceStatus = "rejected"
)

// =============================================================================
// INPUTS
// =============================================================================

// Employee is the subset of the user record the engine reads.
type Employee struct {
	ID       EmployeeID
	Username string
	Email    string
	Role     Role
	Active   bool

	// ExpectedWeeklyHours is nil when the admin has not configured it.
	ExpectedWeeklyHours *decimal.Decimal
}

// ScheduleEntry marks one weekday an employee is expected to work.
// Weekday is stored Sunday-origin (0=Sunday ... 6=Saturday).
type ScheduleEntry struct {
	EmployeeID EmployeeID
	Weekday    int
}

// ClockEvent is one day of attendance. ClockIn and ClockOut are on Date.
type ClockEvent struct {
	EmployeeID  EmployeeID
	Date        calendar.Date
	ClockIn     calendar.Clock
	ClockOut    calendar.Clock
	Status      ClockStatus
	CameByCar   bool
	ParkingCost *decimal.Decimal
	KmDriven    *decimal.Decimal
}

// Worked returns ClockOut - ClockIn in hours. Negative if the stored span is inverted.
func (e ClockEvent) Worked() decimal.Decimal {
	seconds := int64(e.ClockOut.Sub(e.ClockIn).Seconds())
	return decimal.NewFromInt(seconds).Div(secondsPerHour)
}

var secondsPerHour = decimal.NewFromInt(3600)

// Absence is a leave request. EndDate nil means open-ended (still ongoing).
// ID is the store's row id, zero until saved.
type Absence struct {
	ID         int64
	EmployeeID EmployeeID
	StartDate  calendar.Date
	EndDate    *calendar.Date
	Type       AbsenceType
	Status     AbsenceStatus
	Reason     string
}

// EndWithin returns the effective last day of the absence, using rangeEnd for open-ended ones.
func (a Absence) EndWithin(rangeEnd calendar.Date) calendar.Date {
	if a.EndDate == nil {
		return rangeEnd
	}
	return *a.EndDate
}

// =============================================================================
// OUTPUT
// =============================================================================

// DayKind is the single classification assigned to a day.
type DayKind string

const (
	KindHolidayWorked        DayKind = "company_holiday_worked"
	KindHoliday              DayKind = "company_holiday"
	KindVacation             DayKind = "vacation"
	KindSickFirst            DayKind = "sick_first"
	KindSickContinuation     DayKind = "sick_continuation"
	KindPersonalFirst        DayKind = "personal_first"
	KindPersonalContinuation DayKind = "personal_continuation"
	KindScheduledDeficit     DayKind = "scheduled_deficit"
	KindOvertime             DayKind = "overtime"
	KindOnSchedule           DayKind = "on_schedule"
	KindExtraDay             DayKind = "extra_day"
	KindOffDay               DayKind = "off_day"
)

// DayRecord is the per-day detail of a reconciliation.
type DayRecord struct {
	Date          calendar.Date
	Kind          DayKind
	HoursWorked   decimal.Decimal
	HoursExpected decimal.Decimal
	BalanceChange decimal.Decimal
	Note          string
}

// BalanceResult is the outcome of one reconciliation. When Failure is set the
// numeric fields are zero and must not be trusted.
type BalanceResult struct {
	EmployeeID           EmployeeID
	Username             string
	Period               calendar.Period
	ExpectedWeeklyHours  decimal.Decimal
	HoursPerScheduledDay decimal.Decimal
	ScheduledWeekdays    []int // Monday-origin, ascending

	TotalHoursWorked decimal.Decimal
	ExtraHours       decimal.Decimal
	MissingHours     decimal.Decimal
	TotalParkingCost decimal.Decimal
	TotalKm          decimal.Decimal

	Days []DayRecord

	Failure *Failure
}

// OK reports whether the result carries numbers rather than a failure.
func (r BalanceResult) OK() bool { return r.Failure == nil }

// Balance returns ExtraHours - MissingHours.
func (r BalanceResult) Balance() decimal.Decimal {
	return r.ExtraHours.Sub(r.MissingHours)
}
