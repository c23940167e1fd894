// Package observe turns spatial state into the fixed-size percept a policy sees.
package observe

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/reachsim/internal/arena"
)

// Encoder writes the unit direction to the target and, for heading-based
// motion, the agent's forward vector. It keeps no state.
type Encoder struct {
	heading bool
}

func NewEncoder(model arena.MotionModel) Encoder {
	return Encoder{heading: model == arena.HeadingBased}
}

func (e Encoder) Size() int {
	if e.heading {
		return 6
	}
	return 3
}

// Labels names each slot of the percept.
func (e Encoder) Labels() []string {
	labels := []string{"dir_x", "dir_y", "dir_z"}
	if e.heading {
		labels = append(labels, "fwd_x", "fwd_y", "fwd_z")
	}
	return labels
}

// Encode returns the percept. degenerate reports that agent and target
// coincided and the direction was replaced by the zero vector.
func (e Encoder) Encode(s arena.SpatialState) (obs []float64, degenerate bool) {
	dir, err := Direction(s)
	degenerate = err != nil

	obs = make([]float64, 0, e.Size())
	obs = append(obs, dir.X, dir.Y, dir.Z)
	if e.heading {
		fwd := s.Forward3()
		obs = append(obs, fwd.X, fwd.Y, fwd.Z)
	}
	return obs, degenerate
}

// Direction is the unit vector from agent to target with a zero y component.
// It returns ErrDegenerateGeometry and the zero vector when they coincide.
func Direction(s arena.SpatialState) (r3.Vec, error) {
	off := arena.Lift(s.Offset())
	if r3.Norm(off) == 0 {
		return r3.Vec{}, arena.ErrDegenerateGeometry
	}
	return r3.Unit(off), nil
}
