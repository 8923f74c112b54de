/*
reconcile.go - Balance reconciliation for one employee over a period

PURPOSE:
  Answers "how many hours is this employee ahead or behind for [start, end]?"
  by walking every day of the period once, in order.

STEPS:
  1. Read (inside one snapshot): employee, schedule, clock events in range,
     approved absences overlapping the range, holidays.
  2. Validate: employee exists and has the employee role, schedule usable.
     Failures are returned as data (BalanceResult.Failure), not as errors.
  3. Seed the sick streak from absences that began before the range.
  4. Walk start..end, Classify each day, accumulate totals.

ERRORS:
  The error return is reserved for reads that failed (store errors, context
  cancellation). A caller looping over employees can skip a Failure and
  continue, but should stop on an error.

CLOCK EVENT STATUS:
  Only approved clock events count by default. Options.CountPendingClockEvents
  also counts events still awaiting admin approval.

CONCURRENCY:
  Reconcile has no side effects and keeps all state local to the call. It is
  safe to call concurrently, including for the same employee and range. The
  walk itself is sequential: the sick streak depends on day order.

SEE ALSO:
  - classify.go: Per-day rules
  - streak.go: Sick-day continuation
  - report.go: Runs Reconcile for every active employee
*/
package attendance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/timekeeper/calendar"
)

// Options tune reconciliation policy.
type Options struct {
	// CountPendingClockEvents counts clock events that are not approved yet.
	CountPendingClockEvents bool

	// Observe, if set, is called after every Reconcile, batch calls included.
	Observe func(res BalanceResult, err error, elapsed time.Duration)
}

// Reconciler computes BalanceResults from a Source.
type Reconciler struct {
	source Source
	opts   Options
	logger *logrus.Logger
}

// NewReconciler creates a reconciler reading from src.
func NewReconciler(src Source, logger *logrus.Logger, opts Options) *Reconciler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Reconciler{source: src, opts: opts, logger: logger}
}

// facts is everything read for one reconciliation.
type facts struct {
	employee Employee
	schedule Schedule
	clock    map[calendar.Date]ClockEvent
	absences []Absence
	holidays []calendar.Holiday
}

// Reconcile computes the balance of employee id over period (inclusive).
// The caller guarantees period.Start <= period.End.
func (r *Reconciler) Reconcile(ctx context.Context, id EmployeeID, period calendar.Period) (BalanceResult, error) {
	start := time.Now()
	res, err := r.reconcile(ctx, id, period)
	if r.opts.Observe != nil {
		r.opts.Observe(res, err, time.Since(start))
	}
	return res, err
}

func (r *Reconciler) reconcile(ctx context.Context, id EmployeeID, period calendar.Period) (BalanceResult, error) {
	var (
		f       facts
		failure error
	)
	err := withSnapshot(ctx, r.source, func(src Source) error {
		var err error
		f, failure, err = r.load(ctx, src, id, period)
		return err
	})
	if err != nil {
		return BalanceResult{}, fmt.Errorf("reconcile employee %d %s: %w", id, period, err)
	}
	if failure != nil {
		r.logger.WithFields(logrus.Fields{
			"employee_id": id,
			"period":      period.String(),
		}).WithError(failure).Info("balance not computed")
		return failed(id, failure), nil
	}

	return r.walk(f, period), nil
}

// load reads the facts. A non-nil failure means the employee cannot be reconciled.
func (r *Reconciler) load(ctx context.Context, src Source, id EmployeeID, period calendar.Period) (f facts, failure error, err error) {
	emp, err := src.Employee(ctx, id)
	if err != nil {
		return f, nil, err
	}
	if emp == nil || emp.Role != RoleEmployee {
		return f, ErrNotEligible, nil
	}
	f.employee = *emp

	entries, err := src.Schedule(ctx, id)
	if err != nil {
		return f, nil, err
	}
	f.schedule, failure = LookupSchedule(*emp, entries)
	if failure != nil {
		return f, failure, nil
	}

	events, err := src.ClockEvents(ctx, id, period)
	if err != nil {
		return f, nil, err
	}
	f.clock = make(map[calendar.Date]ClockEvent, len(events))
	for _, e := range events {
		if e.Status != ClockApproved && !r.opts.CountPendingClockEvents {
			continue
		}
		f.clock[e.Date] = e
	}

	absences, err := src.ApprovedAbsences(ctx, id, period)
	if err != nil {
		return f, nil, err
	}
	for _, a := range absences {
		if a.Status == AbsenceApproved {
			f.absences = append(f.absences, a)
		}
	}
	sort.SliceStable(f.absences, func(i, j int) bool {
		return f.absences[i].StartDate.Before(f.absences[j].StartDate)
	})

	// Holidays before the range matter when a sick streak started earlier.
	holidayRange := calendar.Period{Start: SeedWindowStart(f.absences, period.Start), End: period.End}
	f.holidays, err = src.Holidays(ctx, holidayRange)
	if err != nil {
		return f, nil, err
	}
	return f, nil, nil
}

// walk classifies every day of the period. Pure computation over f.
func (r *Reconciler) walk(f facts, period calendar.Period) BalanceResult {
	cal := WorkCalendar{Weekdays: f.schedule.Weekdays, Holidays: calendar.NewHolidaySet(f.holidays)}
	absenceDays := expandAbsences(f.absences, period)
	streak := SeedSickStreak(f.absences, period.Start, cal)

	res := BalanceResult{
		EmployeeID:           f.employee.ID,
		Username:             f.employee.Username,
		Period:               period,
		ExpectedWeeklyHours:  f.schedule.WeeklyHours,
		HoursPerScheduledDay: f.schedule.HoursPerDay,
		ScheduledWeekdays:    f.schedule.Weekdays.Sorted(),
		TotalHoursWorked:     decimal.Zero,
		ExtraHours:           decimal.Zero,
		MissingHours:         decimal.Zero,
		TotalParkingCost:     decimal.Zero,
		TotalKm:              decimal.Zero,
		Days:                 make([]DayRecord, 0, period.Len()),
	}

	for _, day := range period.Days() {
		df := DayFacts{
			Date:      day,
			Holiday:   cal.IsHoliday(day),
			Scheduled: cal.IsScheduled(day),
			Absence:   absenceDays[day],
		}
		if e, ok := f.clock[day]; ok {
			df.Clock = &e
		}

		var rec DayRecord
		rec, streak = Classify(df, f.schedule.HoursPerDay, streak, cal)
		res.Days = append(res.Days, rec)

		if df.Clock != nil && rec.Kind.counts() {
			worked, malformed := df.WorkedHours()
			if malformed {
				r.logger.WithFields(logrus.Fields{
					"employee_id": f.employee.ID,
					"date":        day.String(),
					"clock_in":    df.Clock.ClockIn.String(),
					"clock_out":   df.Clock.ClockOut.String(),
				}).Warn("clock-out before clock-in, counting 0 hours")
			}
			res.TotalHoursWorked = res.TotalHoursWorked.Add(worked)
			if df.Clock.ParkingCost != nil {
				res.TotalParkingCost = res.TotalParkingCost.Add(*df.Clock.ParkingCost)
			}
			if df.Clock.KmDriven != nil {
				res.TotalKm = res.TotalKm.Add(*df.Clock.KmDriven)
			}
		}

		switch {
		case rec.BalanceChange.IsPositive():
			res.ExtraHours = res.ExtraHours.Add(rec.BalanceChange)
		case rec.BalanceChange.IsNegative():
			res.MissingHours = res.MissingHours.Sub(rec.BalanceChange)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"employee_id": f.employee.ID,
		"period":      period.String(),
		"extra":       res.ExtraHours.StringFixed(2),
		"missing":     res.MissingHours.StringFixed(2),
	}).Debug("balance reconciled")
	return res
}

// expandAbsences maps every covered day in the period to its absence type.
// Absences must be ordered by start date; a later absence wins on overlap.
func expandAbsences(absences []Absence, period calendar.Period) map[calendar.Date]AbsenceType {
	days := make(map[calendar.Date]AbsenceType)
	for _, a := range absences {
		end := a.EndWithin(period.End)
		if !period.Overlaps(a.StartDate, end) {
			continue
		}
		from := calendar.MaxDate(a.StartDate, period.Start)
		to := calendar.MinDate(end, period.End)
		for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
			days[d] = a.Type
		}
	}
	return days
}
