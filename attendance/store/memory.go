// Package store provides an in-memory attendance.Source.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/timekeeper/attendance"
	"github.com/warp/timekeeper/calendar"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[attendance.EmployeeID]attendance.Employee
	schedules map[attendance.EmployeeID][]attendance.ScheduleEntry
	clock     map[clockKey]attendance.ClockEvent
	absences  []attendance.Absence
	holidays  map[calendar.Date]string
}

type clockKey struct {
	EmployeeID attendance.EmployeeID
	Date       calendar.Date
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[attendance.EmployeeID]attendance.Employee),
		schedules: make(map[attendance.EmployeeID][]attendance.ScheduleEntry),
		clock:     make(map[clockKey]attendance.ClockEvent),
		holidays:  make(map[calendar.Date]string),
	}
}

var _ attendance.SnapshotSource = (*Memory)(nil)

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) SaveEmployee(emp attendance.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
}

// ReplaceSchedule swaps the whole schedule of an employee. Stored weekdays are Sunday-origin.
func (m *Memory) ReplaceSchedule(id attendance.EmployeeID, weekdays ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[int]bool, len(weekdays))
	entries := make([]attendance.ScheduleEntry, 0, len(weekdays))
	for _, wd := range weekdays {
		if seen[wd] {
			continue
		}
		seen[wd] = true
		entries = append(entries, attendance.ScheduleEntry{EmployeeID: id, Weekday: wd})
	}
	m.schedules[id] = entries
}

// SaveClockEvent inserts or replaces the event for (employee, date).
func (m *Memory) SaveClockEvent(e attendance.ClockEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock[clockKey{EmployeeID: e.EmployeeID, Date: e.Date}] = e
}

func (m *Memory) SaveAbsence(a attendance.Absence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.absences = append(m.absences, a)
}

func (m *Memory) SaveHoliday(h calendar.Holiday) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.Date] = h.Name
}

// =============================================================================
// READS (attendance.Source)
// =============================================================================

func (m *Memory) Employee(ctx context.Context, id attendance.EmployeeID) (*attendance.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return view{m}.Employee(ctx, id)
}

func (m *Memory) ActiveEmployees(ctx context.Context) ([]attendance.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return view{m}.ActiveEmployees(ctx)
}

func (m *Memory) Schedule(ctx context.Context, id attendance.EmployeeID) ([]attendance.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return view{m}.Schedule(ctx, id)
}

func (m *Memory) ClockEvents(ctx context.Context, id attendance.EmployeeID, period calendar.Period) ([]attendance.ClockEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return view{m}.ClockEvents(ctx, id, period)
}

func (m *Memory) ApprovedAbsences(ctx context.Context, id attendance.EmployeeID, period calendar.Period) ([]attendance.Absence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return view{m}.ApprovedAbsences(ctx, id, period)
}

func (m *Memory) Holidays(ctx context.Context, period calendar.Period) ([]calendar.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return view{m}.Holidays(ctx, period)
}

// Snapshot holds the read lock for the duration of fn, so writers wait.
func (m *Memory) Snapshot(ctx context.Context, fn func(attendance.Source) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(view{m})
}

// =============================================================================
// VIEW - lock-free reads, caller holds the lock
// =============================================================================

type view struct {
	m *Memory
}

func (v view) Employee(_ context.Context, id attendance.EmployeeID) (*attendance.Employee, error) {
	emp, ok := v.m.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (v view) ActiveEmployees(_ context.Context) ([]attendance.Employee, error) {
	var result []attendance.Employee
	for _, emp := range v.m.employees {
		if emp.Active && emp.Role == attendance.RoleEmployee {
			result = append(result, emp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (v view) Schedule(_ context.Context, id attendance.EmployeeID) ([]attendance.ScheduleEntry, error) {
	entries := v.m.schedules[id]
	result := make([]attendance.ScheduleEntry, len(entries))
	copy(result, entries)
	return result, nil
}

func (v view) ClockEvents(_ context.Context, id attendance.EmployeeID, period calendar.Period) ([]attendance.ClockEvent, error) {
	var result []attendance.ClockEvent
	for k, e := range v.m.clock {
		if k.EmployeeID == id && period.Contains(k.Date) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (v view) ApprovedAbsences(_ context.Context, id attendance.EmployeeID, period calendar.Period) ([]attendance.Absence, error) {
	var result []attendance.Absence
	for _, a := range v.m.absences {
		if a.EmployeeID != id || a.Status != attendance.AbsenceApproved {
			continue
		}
		if period.Overlaps(a.StartDate, a.EndWithin(period.End)) {
			result = append(result, a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (v view) Holidays(_ context.Context, period calendar.Period) ([]calendar.Holiday, error) {
	var result []calendar.Holiday
	for d, name := range v.m.holidays {
		if period.Contains(d) {
			result = append(result, calendar.Holiday{Date: d, Name: name})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}
