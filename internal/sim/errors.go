package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter matches every *InvalidParameterError via errors.Is.
var ErrInvalidParameter = errors.New("invalid simulation parameter")

// InvalidParameterError reports a parameter that would put the simulation
// into an undefined state.
type InvalidParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %g: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidParameter) match.
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
