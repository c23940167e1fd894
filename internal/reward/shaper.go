// Package reward computes the per-step normalized progress reward.
package reward

import (
	"errors"
	"math"
)

var ErrStartingDistance = errors.New("reward: starting distance must be positive")

// Reward is one step's reward and its parts. Total = Shaping + Penalty.
type Reward struct {
	Shaping float64
	Penalty float64
	Total   float64
}

// Shaper rewards the fraction of the starting distance closed this step and
// charges a constant cost per step.
type Shaper struct {
	StepCost float64
}

func NewShaper(stepCost float64) Shaper {
	return Shaper{StepCost: stepCost}
}

func (s Shaper) Compute(previous, current, starting float64) (Reward, error) {
	if !(starting > 0) || math.IsInf(starting, 0) {
		return Reward{}, ErrStartingDistance
	}
	shaping := (previous - current) / starting
	penalty := -s.StepCost
	return Reward{
		Shaping: shaping,
		Penalty: penalty,
		Total:   shaping + penalty,
	}, nil
}
