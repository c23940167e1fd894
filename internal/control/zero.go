package control

import (
	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
)

type Zero struct {
	space arena.ActionSpace
}

func NewZero(space arena.ActionSpace) *Zero {
	return &Zero{space: space}
}

func (z *Zero) Act(obs []float64, s arena.SpatialState) action.Action {
	return action.Noop(z.space)
}
