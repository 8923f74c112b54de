package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotEligible: the employee does not exist or is not an employee role.
	ErrNotEligible = errors.New("user not found or not an employee")

	// ErrNoSchedule: the employee has no scheduled weekdays or no expected weekly hours.
	ErrNoSchedule = errors.New("no work schedule or expected hours set")
)

// =============================================================================
// FAILURE - Error carried as data inside a BalanceResult
// =============================================================================

type FailureCode string

const (
	FailureNotEligible FailureCode = "not_eligible"
	FailureNoSchedule  FailureCode = "no_schedule"
)

// Failure tags a BalanceResult that could not be computed. Batch callers skip
// it and carry on; it is not returned as the error of Reconcile.
type Failure struct {
	Code       FailureCode
	EmployeeID EmployeeID
	Reason     string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("employee %d: %s", f.EmployeeID, f.Reason)
}

func (f *Failure) Unwrap() error {
	switch f.Code {
	case FailureNotEligible:
		return ErrNotEligible
	case FailureNoSchedule:
		return ErrNoSchedule
	}
	return nil
}

func newFailure(id EmployeeID, cause error) *Failure {
	code := FailureNotEligible
	if errors.Is(cause, ErrNoSchedule) {
		code = FailureNoSchedule
	}
	return &Failure{Code: code, EmployeeID: id, Reason: cause.Error()}
}

// failed builds the zero-valued result for a failure.
func failed(id EmployeeID, cause error) BalanceResult {
	return BalanceResult{EmployeeID: id, Failure: newFailure(id, cause)}
}
