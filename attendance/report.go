package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/warp/timekeeper/calendar"
)

// KmCompensationRate is the fixed reimbursement per kilometer driven.
var KmCompensationRate = decimal.RequireFromString("0.23")

// DefaultReportWorkers bounds how many employees are reconciled at once.
const DefaultReportWorkers = 4

// MonthlyRow summarizes one employee's month.
type MonthlyRow struct {
	EmployeeID          EmployeeID
	Username            string
	Email               string
	ExpectedWeeklyHours decimal.Decimal

	DaysWorked       int
	TotalHoursWorked decimal.Decimal
	ExpectedHours    decimal.Decimal
	ExtraHours       decimal.Decimal
	MissingHours     decimal.Decimal
	Balance          decimal.Decimal
	TotalParking     decimal.Decimal
	TotalKm          decimal.Decimal
	KmCompensation   decimal.Decimal
}

// Reporter builds monthly summaries for all active employees.
type Reporter struct {
	source     Source
	reconciler *Reconciler
	workers    int
	logger     *logrus.Logger
}

// NewReporter creates a reporter. workers <= 0 uses DefaultReportWorkers.
func NewReporter(src Source, reconciler *Reconciler, workers int, logger *logrus.Logger) *Reporter {
	if workers <= 0 {
		workers = DefaultReportWorkers
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Reporter{source: src, reconciler: reconciler, workers: workers, logger: logger}
}

// Balances reconciles every active employee over period and returns the
// employees with their results, both in enumeration order. Failed results are
// kept. A read error aborts the whole batch.
func (rp *Reporter) Balances(ctx context.Context, period calendar.Period) ([]Employee, []BalanceResult, error) {
	employees, err := rp.source.ActiveEmployees(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list active employees: %w", err)
	}

	// Each employee's walk is sequential; employees are independent.
	results := make([]BalanceResult, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rp.workers)
	for i, emp := range employees {
		g.Go(func() error {
			res, err := rp.reconciler.Reconcile(gctx, emp.ID, period)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return employees, results, nil
}

// MonthlyReport reconciles every active employee over the calendar month and
// returns one row per employee in enumeration order. Employees whose balance
// cannot be computed are skipped. A read error aborts the whole report.
func (rp *Reporter) MonthlyReport(ctx context.Context, year int, month time.Month) ([]MonthlyRow, error) {
	employees, results, err := rp.Balances(ctx, calendar.MonthPeriod(year, month))
	if err != nil {
		return nil, err
	}

	report := make([]MonthlyRow, 0, len(results))
	for i, res := range results {
		if !res.OK() {
			rp.logger.WithFields(logrus.Fields{
				"employee_id": employees[i].ID,
				"month":       fmt.Sprintf("%04d-%02d", year, int(month)),
				"reason":      res.Failure.Reason,
			}).Warn("skipping employee in monthly report")
			continue
		}
		report = append(report, Summarize(employees[i], res))
	}
	return report, nil
}

// Summarize reduces a successful BalanceResult to a MonthlyRow.
func Summarize(emp Employee, res BalanceResult) MonthlyRow {
	row := MonthlyRow{
		EmployeeID:          emp.ID,
		Username:            emp.Username,
		Email:               emp.Email,
		ExpectedWeeklyHours: res.ExpectedWeeklyHours,
		TotalHoursWorked:    decimal.Zero,
		ExpectedHours:       decimal.Zero,
		ExtraHours:          res.ExtraHours,
		MissingHours:        res.MissingHours,
		Balance:             res.Balance(),
		TotalParking:        res.TotalParkingCost,
		TotalKm:             res.TotalKm,
		KmCompensation:      res.TotalKm.Mul(KmCompensationRate),
	}
	for _, day := range res.Days {
		if day.HoursWorked.IsPositive() {
			row.DaysWorked++
		}
		row.TotalHoursWorked = row.TotalHoursWorked.Add(day.HoursWorked)
		row.ExpectedHours = row.ExpectedHours.Add(day.HoursExpected)
	}
	return row
}
