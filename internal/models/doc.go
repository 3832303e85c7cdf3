// Package models provides plant models for predictive control.
//
// Each model implements [ocp.Model], pairing its dynamics with the
// quadratic cost terms a controller minimizes:
//
//   - [Pendulum]: torque-driven pendulum, regulation to hanging rest
//   - [CartPole]: force-driven cart balancing an inverted pole
//   - [DoubleIntegrator]: discretized point mass driven by acceleration
//   - [Linear]: generic linear dynamics with quadratic costs, backed
//     by gonum matrices
//
// Models carry their own input limits and ship a Problem method that
// assembles a bounded [ocp.Problem] ready for transcription. [Build]
// maps the config-file spellings onto ready-to-run scenarios.
package models
