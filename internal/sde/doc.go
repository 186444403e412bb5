// Package sde advances single quantum trajectories under stochastic
// Schrödinger dynamics.
//
// A [System] couples a (possibly time-dependent) Hamiltonian with stochastic
// channel operators and exposes the drift and diffusion of the normalized
// diffusive unraveling. A [Scheme] advances the state by one substep,
// consuming pre-generated increments from a [Realization]; [Integrate] runs a
// full trajectory over an output grid, retaining boundary states and the raw
// measurement increments. [IntegrateJump] is the discrete-event counterpart
// for photon-counting detection.
//
// All randomness enters through [Realization] blocks generated from explicit
// per-trajectory seeds; re-supplying a realization reproduces a trajectory
// bit for bit.
package sde
