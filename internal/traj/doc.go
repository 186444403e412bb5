// Package traj runs ensembles of stochastic trajectories and reduces them to
// expectation values and measurement records. Trajectories are independent
// given their noise blocks, so the ensemble runs on a worker pool while the
// reduction stays deterministic in trajectory order.
package traj
