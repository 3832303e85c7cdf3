package mpc

import (
	"errors"
	"fmt"
)

// Domain errors for transcription and receding-horizon solving.
var (
	// ErrTranscription indicates the problem could not be flattened
	// into a program (inconsistent dynamics or constraint output).
	ErrTranscription = errors.New("mpc: transcription failed")

	// ErrUnknownBackend indicates a backend name with no registration.
	ErrUnknownBackend = errors.New("mpc: unknown backend")

	// ErrNotConverged indicates the backend finished without an
	// acceptable solution. The warm-start cache is still updated.
	ErrNotConverged = errors.New("mpc: solver did not converge")
)

// SolveError reports a failed receding-horizon solve with the backend
// status attached. It unwraps to [ErrNotConverged].
type SolveError struct {
	Status     Status
	Iterations int
	Message    string
}

func (e *SolveError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mpc: solve failed after %d iterations: %s", e.Iterations, e.Status)
	}
	return fmt.Sprintf("mpc: solve failed after %d iterations: %s (%s)", e.Iterations, e.Status, e.Message)
}

func (e *SolveError) Unwrap() error {
	return ErrNotConverged
}
