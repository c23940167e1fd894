package termination

import (
	"github.com/san-kum/reachsim/internal/arena"
)

type State int

const (
	Running State = iota
	Ended
)

func (s State) String() string {
	if s == Ended {
		return "ended"
	}
	return "running"
}

// Evaluator runs enders in order and latches once one fires.
type Evaluator struct {
	enders []Ender
	state  State
	last   arena.Signal
}

// NewEvaluator uses the standard order: Trigger, Divergence, TimeLimit.
func NewEvaluator(divergenceFactor, timeLimit float64) *Evaluator {
	return New(Trigger{}, Divergence{Factor: divergenceFactor}, TimeLimit{Limit: timeLimit})
}

func New(enders ...Ender) *Evaluator {
	return &Evaluator{enders: enders}
}

func FromConfig(cfg arena.Config) *Evaluator {
	return NewEvaluator(cfg.DivergenceFactor, cfg.TimeLimit)
}

// Evaluate returns at most one ending signal. Once ended it refuses further
// input until Reset.
func (e *Evaluator) Evaluate(in Input) (arena.Signal, error) {
	if e.state == Ended {
		return e.last, arena.ErrEpisodeEnded
	}
	for _, ender := range e.enders {
		if sig, ok := ender.End(in); ok {
			e.state = Ended
			e.last = sig
			return sig, nil
		}
	}
	return arena.Signal{}, nil
}

func (e *Evaluator) State() State       { return e.state }
func (e *Evaluator) Last() arena.Signal { return e.last }

func (e *Evaluator) Reset() {
	e.state = Running
	e.last = arena.Signal{}
}
