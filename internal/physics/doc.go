// Package physics provides collision collaborators for the environment.
//
// Both types report the moment the agent's circle starts overlapping the
// target's circle, like a trigger volume:
//
//   - [Proximity]: analytic circle overlap, no dependencies
//   - [Box2D]: a Box2D world with a dynamic agent body and a static sensor
//     fixture on the target
//
// Each Place starts a fresh episode; each Sync moves the agent to the
// integrated state and reports whether it entered the target on this step.
package physics
