// Package viz provides the terminal play mode for the reach arena.
//
// A person drives the agent from the keyboard. Arrow keys or WASD feed the
// heuristic axis source, which produces the same actions a learned policy
// would emit, so the environment cannot tell the two apart.
//
// # Key Bindings
//
//	Arrows/WASD - Steer (turn/throttle, or x/z velocity)
//	Space       - Pause/Resume
//	R           - Start a new episode
//	T           - Cycle color themes
//	?           - Show help overlay
//	Q           - Quit
package viz
