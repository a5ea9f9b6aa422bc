// Package dynamo provides the core primitives for integrating ordinary
// differential equations.
//
// The package defines the contracts shared by models and solvers:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(t, X))
//   - [Stepper]: single-step numerical integrator
//   - [Solver]: integrates a [System] over a [Span] and samples it on a time grid
//   - [Solution]: states sampled at every grid point, plus solver statistics
//
// # Example
//
//	model := epidemic.NewSEIR(params)
//	solver := integrators.NewRK45()
//	grid := dynamo.Linspace(0, 160, 1000)
//	sol, err := solver.Solve(ctx, model, dynamo.Span{Start: 0, End: 160}, x0, grid)
//
// # Thread Safety
//
// Solvers keep no state between calls, but a single call is strictly
// sequential. Nothing in this package spawns goroutines.
package dynamo
