/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures for API communication. Domain values are
  exact decimals; on the wire every hour and money amount is a number
  rounded to 2 decimals.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

TYPES:
  Balance:
    BalanceDTO, DayDTO, AllBalancesResponse

  Exports:
    ReportRunDTO

SEE ALSO:
  - handlers.go: Uses these types
  - attendance/types.go: BalanceResult, DayRecord
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/timekeeper/attendance"
	"github.com/warp/timekeeper/store/sqlite"
)

// =============================================================================
// BALANCE
// =============================================================================

// BalanceDTO is one employee's balance over a period. When Error is set the
// balance could not be computed and only the totals (all zero) are filled.
type BalanceDTO struct {
	UserID               int64    `json:"user_id"`
	Username             string   `json:"username,omitempty"`
	PeriodStart          string   `json:"period_start,omitempty"`
	PeriodEnd            string   `json:"period_end,omitempty"`
	ExpectedWeeklyHours  float64  `json:"expected_weekly_hours"`
	HoursPerScheduledDay float64  `json:"hours_per_scheduled_day"`
	ScheduledDays        []int    `json:"scheduled_days"`
	TotalHoursWorked     float64  `json:"total_hours_worked"`
	ExtraHours           float64  `json:"extra_hours"`
	MissingHours         float64  `json:"missing_hours"`
	Balance              float64  `json:"balance"`
	TotalParking         float64  `json:"total_parking"`
	TotalKm              float64  `json:"total_km"`
	Details              []DayDTO `json:"details"`

	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// DayDTO is one classified day.
type DayDTO struct {
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	HoursWorked   float64 `json:"hours_worked"`
	HoursExpected float64 `json:"hours_expected"`
	BalanceChange float64 `json:"balance_change"`
	Note          string  `json:"note,omitempty"`
}

// AllBalancesResponse wraps the balances of every active employee.
type AllBalancesResponse struct {
	PeriodStart string       `json:"period_start"`
	PeriodEnd   string       `json:"period_end"`
	Employees   []BalanceDTO `json:"employees"`
}

// =============================================================================
// EXPORTS
// =============================================================================

// ReportRunDTO is a month-close export run.
type ReportRunDTO struct {
	Year        int        `json:"year"`
	Month       int        `json:"month"`
	Status      string     `json:"status"`
	FilePath    string     `json:"file_path,omitempty"`
	Rows        int        `json:"rows"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toBalanceDTO(res attendance.BalanceResult) BalanceDTO {
	if !res.OK() {
		return BalanceDTO{
			UserID:        int64(res.EmployeeID),
			ScheduledDays: []int{},
			Details:       []DayDTO{},
			Error:         res.Failure.Reason,
			ErrorCode:     string(res.Failure.Code),
		}
	}

	dto := BalanceDTO{
		UserID:               int64(res.EmployeeID),
		Username:             res.Username,
		PeriodStart:          res.Period.Start.String(),
		PeriodEnd:            res.Period.End.String(),
		ExpectedWeeklyHours:  round2(res.ExpectedWeeklyHours),
		HoursPerScheduledDay: round2(res.HoursPerScheduledDay),
		ScheduledDays:        res.ScheduledWeekdays,
		TotalHoursWorked:     round2(res.TotalHoursWorked),
		ExtraHours:           round2(res.ExtraHours),
		MissingHours:         round2(res.MissingHours),
		Balance:              round2(res.Balance()),
		TotalParking:         round2(res.TotalParkingCost),
		TotalKm:              round2(res.TotalKm),
		Details:              make([]DayDTO, 0, len(res.Days)),
	}
	for _, day := range res.Days {
		dto.Details = append(dto.Details, DayDTO{
			Date:          day.Date.String(),
			Type:          string(day.Kind),
			HoursWorked:   round2(day.HoursWorked),
			HoursExpected: round2(day.HoursExpected),
			BalanceChange: round2(day.BalanceChange),
			Note:          day.Note,
		})
	}
	return dto
}

func toReportRunDTO(r sqlite.ReportRun) ReportRunDTO {
	return ReportRunDTO{
		Year:        r.Year,
		Month:       int(r.Month),
		Status:      r.Status,
		FilePath:    r.FilePath,
		Rows:        r.Rows,
		Error:       r.Error,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}
