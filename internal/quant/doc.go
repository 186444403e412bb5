// Package quant provides the operator and state algebra underlying the
// stochastic solvers.
//
// The package defines the fundamental types for finite-dimensional quantum
// systems:
//
//   - [Operator]: dense complex matrix with a tensor-factor dimension structure
//   - [Ket]: pure-state vector
//   - [Coeff]: time-dependent coefficient (constant, sampled, or closed-form)
//   - [TimeDep]: time-dependent operator built from (operator, coefficient) terms
//
// Operators are immutable once constructed; algebra methods ([Operator.Add],
// [Operator.Mul], [Operator.Dag], [Operator.Tensor]) return new values.
//
// # Subsystem embedding
//
// [Expand] embeds an operator acting on a few register sites into the full
// tensor-product space, and [ExpandPeriodic] replicates it cyclically across
// every site. Both fail with [ErrDimMismatch] when the operator's factor
// dimensions do not match the addressed sites.
package quant
