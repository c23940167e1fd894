// Package arena provides the shared vocabulary of the reach-the-target
// environment.
//
// The package defines the types every other component agrees on:
//
//   - [SpatialState]: agent position, heading and target position on the ground plane
//   - [EpisodeContext]: per-episode bookkeeping written by reset and each step
//   - [ActionSpace] and [MotionModel]: the two configuration axes
//   - [Signal]: the per-step termination verdict
//   - [Config]: environment parameters, fixed for an environment's lifetime
//
// Positions use gonum's r2.Vec where X is the world x axis and Y is the
// world z axis. The vertical axis never changes and only appears in
// observations, which are emitted as 3-D vectors with a zero y component.
//
// # Thread Safety
//
// Values in this package are plain data. An environment that owns them is
// NOT thread-safe; run independent environments for parallel episodes.
package arena
