package integrators

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
)

// Heading rotates first, then moves along the new forward vector.
type Heading struct{}

func NewHeading() *Heading {
	return &Heading{}
}

func (h *Heading) Step(s arena.SpatialState, cmd action.Command, dt float64) arena.SpatialState {
	s.Heading = wrap(s.Heading + cmd.TurnRate*dt)
	s.Agent = r2.Add(s.Agent, r2.Scale(cmd.ForwardSpeed*dt, s.Forward()))
	return s
}

// wrap keeps heading in (-pi, pi].
func wrap(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
