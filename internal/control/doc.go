// Package control provides policies that produce actions for the environment.
//
// Policies implement sim.Policy:
//
//   - [Heuristic]: maps human axis input to an action, quantizing for discrete spaces
//   - [Zero]: the no-op action
//   - [Seek] and [Flee]: scripted steering toward or away from the target, using
//     a [PID] on heading error for heading-based motion
//   - [Random]: seeded uniform actions
//   - [Replay]: a recorded action sequence
//
// Every policy reads only the percept, so the same policies work against any
// encoder-compatible environment.
//
// # Usage
//
//	seek := control.NewSeek(arena.Continuous, arena.HeadingBased, cfg.Dt)
//	runner := sim.NewRunner(env, seek)
//
// [PID] implements Reset and supports live tuning through GetParams/SetParam.
package control
