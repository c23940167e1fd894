package integrators

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
)

// Holonomic translates directly by the commanded velocity. Heading is untouched.
type Holonomic struct{}

func NewHolonomic() *Holonomic {
	return &Holonomic{}
}

func (h *Holonomic) Step(s arena.SpatialState, cmd action.Command, dt float64) arena.SpatialState {
	s.Agent = r2.Add(s.Agent, r2.Scale(dt, cmd.Velocity))
	return s
}
