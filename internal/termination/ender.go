// Package termination decides when an episode ends.
//
// Conditions are independent [Ender]s consulted in priority order: reaching
// the target, diverging from it, then running out of time. The first one
// that fires wins.
package termination

import "github.com/san-kum/reachsim/internal/arena"

// Input is everything the enders look at after a step.
type Input struct {
	TargetReached    bool
	Distance         float64
	StartingDistance float64
	Elapsed          float64
}

type Ender interface {
	End(in Input) (arena.Signal, bool)
}

// Trigger ends with Success when the collision collaborator reported contact.
type Trigger struct{}

func (Trigger) End(in Input) (arena.Signal, bool) {
	if in.TargetReached {
		return arena.Signal{Reason: arena.Success, Cause: "target reached"}, true
	}
	return arena.Signal{}, false
}

// Divergence ends with Failure once the agent is strictly farther than
// Factor times its starting distance.
type Divergence struct {
	Factor float64
}

func (d Divergence) End(in Input) (arena.Signal, bool) {
	if in.Distance > in.StartingDistance*d.Factor {
		return arena.Signal{Reason: arena.Failure, Cause: "diverged"}, true
	}
	return arena.Signal{}, false
}

// TimeLimit ends with Timeout once elapsed time strictly exceeds Limit.
type TimeLimit struct {
	Limit float64
}

func (l TimeLimit) End(in Input) (arena.Signal, bool) {
	if in.Elapsed > l.Limit {
		return arena.Signal{Reason: arena.Timeout}, true
	}
	return arena.Signal{}, false
}

// Func adapts a predicate into an Ender that fires with the given signal.
type Func struct {
	Signal arena.Signal
	Pred   func(Input) bool
}

func (f Func) End(in Input) (arena.Signal, bool) {
	if f.Pred(in) {
		return f.Signal, true
	}
	return arena.Signal{}, false
}
