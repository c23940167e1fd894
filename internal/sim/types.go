package sim

import (
	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/reward"
)

// Policy chooses the next action. Learned policies read only obs; scripted
// ones may inspect the full state.
type Policy interface {
	Act(obs []float64, s arena.SpatialState) action.Action
}

// Resetter is implemented by policies that carry per-episode state.
type Resetter interface {
	Reset()
}

// Collider is the collision collaborator. Place is called on reset, Sync
// after every motion step; Sync reports the agent entering the target.
type Collider interface {
	Place(s arena.SpatialState)
	Sync(s arena.SpatialState, dt float64) bool
}

// Animator is notified when the agent starts or stops moving.
type Animator interface {
	MovingStateChanged(moving bool)
}

type Metric interface {
	Name() string
	Observe(ep *Episode)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(a action.Action, r StepResult)
}

// EpisodeObserver is implemented by observers that also want episode summaries.
type EpisodeObserver interface {
	OnEpisode(ep *Episode)
}

// StepResult is what Reset and Step hand back to the caller.
type StepResult struct {
	Observation []float64
	Reward      reward.Reward
	Signal      arena.Signal
	State       arena.SpatialState
	Command     action.Command
	Distance    float64
	Step        int
	Elapsed     float64
	Degenerate  bool
}

func (r StepResult) Done() bool { return r.Signal.Ended() }

// Transition is one recorded step.
type Transition struct {
	Step        int
	Elapsed     float64
	State       arena.SpatialState
	Observation []float64
	Action      action.Action
	Reward      reward.Reward
	Signal      arena.Signal
}

type Episode struct {
	Index            int
	Outcome          arena.Signal
	Return           float64
	Shaping          float64
	Penalty          float64
	Steps            int
	Duration         float64
	StartingDistance float64
	FinalDistance    float64
	Degenerate       int
	Transitions      []Transition
}

// RunConfig controls a multi-episode run. Record is the number of leading
// episodes whose transitions are kept.
type RunConfig struct {
	Episodes int
	Record   int
}

type Result struct {
	Episodes   []*Episode
	Metrics    map[string]float64
	StepsTaken int
}

// Outcomes counts episodes per termination reason.
func (r *Result) Outcomes() map[arena.Reason]int {
	counts := make(map[arena.Reason]int)
	for _, ep := range r.Episodes {
		counts[ep.Outcome.Reason]++
	}
	return counts
}

// Returns lists episode returns in order.
func (r *Result) Returns() []float64 {
	out := make([]float64, len(r.Episodes))
	for i, ep := range r.Episodes {
		out[i] = ep.Return
	}
	return out
}
