/*
source.go - Read interface between the engine and persistence

PURPOSE:
  The engine never writes. It reads one employee's facts for a period
  through Source. Implementations:
  - store/sqlite: production
  - attendance/store: in-memory, for tests and development

SNAPSHOTS:
  A reconciliation should not observe an approval that lands halfway through
  its reads. Sources that can offer a consistent read view implement
  SnapshotSource; the reconciler then performs all reads of one call inside
  Snapshot.

MISSING ROWS:
  Employee returns (nil, nil) when the employee does not exist.
*/
package attendance

import (
	"context"

	"github.com/warp/timekeeper/calendar"
)

// Source reads the facts a reconciliation needs.
type Source interface {
	// Employee returns the employee or nil if there is none with that id.
	Employee(ctx context.Context, id EmployeeID) (*Employee, error)

	// ActiveEmployees returns active users with the employee role, ordered by id.
	ActiveEmployees(ctx context.Context) ([]Employee, error)

	// Schedule returns the stored (Sunday-origin) schedule entries.
	Schedule(ctx context.Context, id EmployeeID) ([]ScheduleEntry, error)

	// ClockEvents returns every clock event of the employee dated within the period, any status.
	ClockEvents(ctx context.Context, id EmployeeID, period calendar.Period) ([]ClockEvent, error)

	// ApprovedAbsences returns approved absences overlapping the period,
	// open-ended absences starting on or before period.End included, ordered by start date.
	ApprovedAbsences(ctx context.Context, id EmployeeID, period calendar.Period) ([]Absence, error)

	// Holidays returns company holidays within the period.
	Holidays(ctx context.Context, period calendar.Period) ([]calendar.Holiday, error)
}

// SnapshotSource is a Source that can run reads against a consistent view.
type SnapshotSource interface {
	Source

	// Snapshot runs fn with a Source whose reads all see the same data.
	Snapshot(ctx context.Context, fn func(Source) error) error
}

// withSnapshot runs fn inside a snapshot when src supports it.
func withSnapshot(ctx context.Context, src Source, fn func(Source) error) error {
	if ss, ok := src.(SnapshotSource); ok {
		return ss.Snapshot(ctx, fn)
	}
	return fn(src)
}
