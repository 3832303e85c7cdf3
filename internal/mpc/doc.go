// Package mpc transcribes optimal control problems into nonlinear
// programs and re-solves them in a receding-horizon loop.
//
// [Transcribe] flattens an [ocp.Problem] with multiple shooting: the
// decision vector interleaves states and inputs stage by stage,
//
//	w = [X_0, U_0, X_1, U_1, ..., X_N]
//
// and dynamic feasibility becomes per-stage defect equalities
// step(X_i,U_i) - X_{i+1} = 0 alongside the registered path
// constraints. The resulting [NLP] is plain data plus two evaluation
// closures, solvable by any registered [Backend].
//
// [MPC] owns one prepared solver and a warm-start cache. Each
// [MPC.Solve] pins the first state to the measurement through
// coincident variable bounds, hands the cached primal and multipliers
// to the backend, refreshes the cache from the answer and returns the
// first input of the plan. An MPC instance is not safe for concurrent
// use; run one instance per control loop.
package mpc
