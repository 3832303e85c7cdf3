package metrics

import (
	"math"

	"github.com/kmdra/horizon/internal/ocp"
)

// TrackingError is the root-mean-square distance between the state
// and a fixed target. A short target compares only the leading
// components.
type TrackingError struct {
	name    string
	target  ocp.State
	sumSq   float64
	samples int
}

func NewTrackingError(target ocp.State) *TrackingError {
	return &TrackingError{
		name:   "tracking_error",
		target: target.Clone(),
	}
}

func (e *TrackingError) Name() string {
	return e.name
}

func (e *TrackingError) Observe(x ocp.State, u ocp.Control, t float64) {
	for i, want := range e.target {
		if i >= len(x) {
			break
		}
		d := x[i] - want
		e.sumSq += d * d
	}
	e.samples++
}

func (e *TrackingError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return math.Sqrt(e.sumSq / float64(e.samples))
}

func (e *TrackingError) Reset() {
	e.sumSq = 0
	e.samples = 0
}
