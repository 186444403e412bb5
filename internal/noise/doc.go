// Package noise builds time-dependent operator descriptions of environmental
// noise for an n-site register.
//
// Two capabilities exist:
//
//   - [Lindblad]: models producing collapse-operator lists consumed as
//     stochastic channels ([Decoherence], [Relaxation])
//   - [Drive]: models producing a single operator added to the coherent
//     generator ([ControlAmp], [White])
//
// [White] composes a gaussian coefficient-sampling step with [ControlAmp]'s
// assembly; its randomness comes from an explicit source, never from global
// state, so realizations are reproducible.
package noise
