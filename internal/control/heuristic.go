package control

import (
	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
)

// AxisThreshold is how far an axis must be pushed to select a non-neutral
// discrete branch.
const AxisThreshold = 0.33

// Heuristic turns the latest axis input into an action. Horizontal is the
// turn (or x velocity), vertical the throttle (or z velocity).
type Heuristic struct {
	space      arena.ActionSpace
	horizontal float64
	vertical   float64
}

func NewHeuristic(space arena.ActionSpace) *Heuristic {
	return &Heuristic{space: space}
}

// SetAxes stores the current input, each nominally in [-1, 1].
func (h *Heuristic) SetAxes(horizontal, vertical float64) {
	h.horizontal = horizontal
	h.vertical = vertical
}

func (h *Heuristic) Axes() (horizontal, vertical float64) {
	return h.horizontal, h.vertical
}

func (h *Heuristic) Act(obs []float64, s arena.SpatialState) action.Action {
	return FromAxes(h.space, h.horizontal, h.vertical)
}

// FromAxes passes axes through for continuous spaces and quantizes them for
// discrete ones.
func FromAxes(space arena.ActionSpace, horizontal, vertical float64) action.Action {
	if space == arena.Discrete {
		return action.Discrete(Quantize(horizontal), Quantize(vertical))
	}
	return action.Continuous(horizontal, vertical)
}

// Quantize maps an axis to a discrete branch: 0 below -0.33, 2 above 0.33,
// otherwise 1.
func Quantize(axis float64) int {
	switch {
	case axis > AxisThreshold:
		return 2
	case axis < -AxisThreshold:
		return 0
	}
	return 1
}
