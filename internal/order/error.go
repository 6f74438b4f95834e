package order

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroTotal is a precondition failure: no money can be captured.
	ErrZeroTotal = errors.New("order total is zero, cannot create payment")
	// ErrMissingID means the gateway accepted a create call but returned no
	// identifier.
	ErrMissingID = errors.New("gateway returned no id")
	// ErrNotEnoughItems is returned when the inventory cannot supply the
	// items a real-menu order needs.
	ErrNotEnoughItems = errors.New("not enough sellable items in inventory")
	ErrNoEmployee     = errors.New("no active employee found")
)

// StepError tags a failure with the step it happened in.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func stepErr(step Step, err error) error {
	return &StepError{Step: step, Err: err}
}

// FailedStep returns the step recorded in err, or "" when err carries none.
func FailedStep(err error) Step {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
