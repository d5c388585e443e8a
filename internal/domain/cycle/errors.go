package cycle

import (
	"errors"
	"fmt"
)

// ErrEntryNotFound is returned by repositories when a date is not stored.
var ErrEntryNotFound = errors.New("cycle entry not found")

// InsufficientDataError reports fewer than two distinct cycle-start dates.
type InsufficientDataError struct {
	Distinct int
}

func (e *InsufficientDataError) Error() string {
	return "please enter at least two cycle dates"
}

// NoValidCycleError reports that no gap between consecutive dates fell inside
// the accepted cycle-length band.
type NoValidCycleError struct {
	Gaps []int
	Min  int
	Max  int
}

func (e *NoValidCycleError) Error() string {
	return fmt.Sprintf("unable to calculate, please check your dates (no cycle between %d and %d days)", e.Min, e.Max)
}
