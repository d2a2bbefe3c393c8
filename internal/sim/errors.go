package sim

import (
	"errors"
	"fmt"
)

// ParamError reports a simulation precondition violation: unsorted or
// overlapping keep-intervals, an odd population size, a split time not
// strictly before the start time, or a degenerate genome. Parameter
// errors are detected once, before any table work begins; a run never
// fails on them mid-flight.
type ParamError struct {
	// Field names the offending parameter in its scenario/flag form.
	Field string

	// Message describes the violation.
	Message string
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Message)
}

// IsParamError reports whether err is (or wraps) a ParamError.
func IsParamError(err error) bool {
	var pe *ParamError
	return errors.As(err, &pe)
}
