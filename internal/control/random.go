package control

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
)

// Random samples actions uniformly: each continuous component in [-1, 1] or
// each discrete branch with equal weight.
type Random struct {
	space       arena.ActionSpace
	continuous  distuv.Uniform
	categorical distuv.Categorical
}

func NewRandom(space arena.ActionSpace, seed uint64) *Random {
	src := rand.NewSource(seed)
	return &Random{
		space:       space,
		continuous:  distuv.Uniform{Min: -1, Max: 1, Src: src},
		categorical: distuv.NewCategorical([]float64{1, 1, 1}, src),
	}
}

func (r *Random) Act(obs []float64, s arena.SpatialState) action.Action {
	if r.space == arena.Discrete {
		return action.Discrete(int(r.categorical.Rand()), int(r.categorical.Rand()))
	}
	return action.Continuous(r.continuous.Rand(), r.continuous.Rand())
}
