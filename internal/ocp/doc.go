// Package ocp defines optimal control problems over a finite horizon.
//
// A [Problem] couples a plant model with per-stage bounds and path
// constraints. The model implements the [Model] interface, providing
// the dynamics and the cost terms:
//
//   - Dynamics: state derivative (continuous modes) or next state
//     (discretized mode)
//   - StageCost: running cost, summed over the horizon
//   - TerminalCost: cost on the final state
//
// Cost-free models can embed [ZeroCost] to pick up zero defaults and
// only implement their dynamics.
//
// # Stage bounds
//
// Input and state bounds are held per stage and written through range
// setters. A setter called with no stage arguments writes every stage,
// with one argument a single stage, and with two arguments the
// half-open range [k1,k2). State bound entry k applies to the state
// reached after stage k, so the initial state is never bounded here;
// the receding-horizon layer pins it to the measurement instead.
package ocp
