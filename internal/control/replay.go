package control

import (
	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
)

// Replay plays back recorded actions, then the no-op action.
type Replay struct {
	space   arena.ActionSpace
	actions []action.Action
	next    int
}

func NewReplay(space arena.ActionSpace, actions []action.Action) *Replay {
	return &Replay{space: space, actions: actions}
}

func (r *Replay) Act(obs []float64, s arena.SpatialState) action.Action {
	if r.next >= len(r.actions) {
		return action.Noop(r.space)
	}
	a := r.actions[r.next]
	r.next++
	return a
}

func (r *Replay) Remaining() int { return len(r.actions) - r.next }

// Reset rewinds to the first action.
func (r *Replay) Reset() { r.next = 0 }
