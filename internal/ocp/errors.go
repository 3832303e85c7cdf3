package ocp

import (
	"errors"
	"fmt"
)

// Domain errors for problem definition.
var (
	// ErrDimension indicates a vector whose length does not match the
	// declared state or control dimension.
	ErrDimension = errors.New("ocp: dimension mismatch")

	// ErrStageRange indicates a stage index or range outside [0, horizon).
	ErrStageRange = errors.New("ocp: stage outside horizon")

	// ErrInvalidProblem indicates a structurally unusable problem
	// definition (bad dimensions, nil model, unknown mode).
	ErrInvalidProblem = errors.New("ocp: invalid problem definition")
)

// InvalidProblemError carries the reason a definition was rejected.
type InvalidProblemError struct {
	Detail string
}

func (e *InvalidProblemError) Error() string {
	return fmt.Sprintf("ocp: invalid problem definition: %s", e.Detail)
}

func (e *InvalidProblemError) Unwrap() error {
	return ErrInvalidProblem
}
