// Package epidemic provides deterministic compartmental epidemic models.
//
// Each model is an [RHS] (right-hand side) bound to a [Params] value by [Model], which
// implements [dynamo.System]:
//
//   - [SEIR]: Susceptible, Exposed, Infectious, Recovered
//   - [SIR]: Susceptible, Infectious, Recovered (no latent period)
//
// The total population S+E+I+R is conserved by construction. Compartment
// values are never clamped, so a solver that is too coarse for the rates can
// drive them slightly negative.
package epidemic
