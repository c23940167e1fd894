// Package integrators advances the agent by one fixed timestep.
package integrators

import (
	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
)

// Integrator applies a command for dt seconds. The target never moves.
type Integrator interface {
	Step(s arena.SpatialState, cmd action.Command, dt float64) arena.SpatialState
}

func New(model arena.MotionModel) Integrator {
	if model == arena.HeadingBased {
		return NewHeading()
	}
	return NewHolonomic()
}
