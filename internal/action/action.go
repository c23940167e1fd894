// Package action decodes raw policy output into motion commands.
//
// An [Action] carries either two floats or two discrete branch indices.
// Discrete indices {0, 1, 2} map to {-1, 0, +1}. For heading-based motion
// the components are (turn, throttle); for holonomic motion they are the
// x and z velocity inputs.
package action

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/reachsim/internal/arena"
)

// Action is a raw payload tagged with its space.
type Action struct {
	Space    arena.ActionSpace
	Values   [2]float64
	Branches [2]int
}

func Continuous(a, b float64) Action {
	return Action{Space: arena.Continuous, Values: [2]float64{a, b}}
}

func Discrete(a, b int) Action {
	return Action{Space: arena.Discrete, Branches: [2]int{a, b}}
}

// Noop is the action that requests no motion in the given space.
func Noop(space arena.ActionSpace) Action {
	if space == arena.Discrete {
		return Discrete(1, 1)
	}
	return Continuous(0, 0)
}

func (a Action) String() string {
	if a.Space == arena.Discrete {
		return fmt.Sprintf("discrete(%d, %d)", a.Branches[0], a.Branches[1])
	}
	return fmt.Sprintf("continuous(%.3f, %.3f)", a.Values[0], a.Values[1])
}

// Intent is an action after discrete remapping: nominally in [-1, 1] but
// continuous input is not clamped.
type Intent struct {
	A, B float64
}

// Command is what a motion integrator consumes. Rates are per second.
type Command struct {
	TurnRate     float64 // radians per second
	ForwardSpeed float64
	Velocity     r2.Vec
}

// Speed is the magnitude of the commanded planar motion.
func (c Command) Speed() float64 {
	if c.Velocity != (r2.Vec{}) {
		return r2.Norm(c.Velocity)
	}
	return math.Abs(c.ForwardSpeed)
}

// Interpreter is fixed to one action space and motion model.
type Interpreter struct {
	space           arena.ActionSpace
	model           arena.MotionModel
	maxSpeed        float64
	maxAngularSpeed float64
}

// New builds an interpreter. maxAngularSpeed is in degrees per second.
func New(space arena.ActionSpace, model arena.MotionModel, maxSpeed, maxAngularSpeed float64) *Interpreter {
	return &Interpreter{
		space:           space,
		model:           model,
		maxSpeed:        maxSpeed,
		maxAngularSpeed: maxAngularSpeed * math.Pi / 180,
	}
}

func FromConfig(cfg arena.Config) *Interpreter {
	return New(cfg.ActionSpace, cfg.MotionModel, cfg.MaxSpeed, cfg.MaxAngularSpeed)
}

func (i *Interpreter) Space() arena.ActionSpace { return i.space }

// Decode validates the payload and remaps discrete branches.
func (i *Interpreter) Decode(a Action) (Intent, error) {
	if a.Space != i.space {
		return Intent{}, fmt.Errorf("%w: %s payload for %s space", arena.ErrInvalidAction, a.Space, i.space)
	}
	if i.space == arena.Continuous {
		return Intent{A: a.Values[0], B: a.Values[1]}, nil
	}
	for _, b := range a.Branches {
		if b < 0 || b > 2 {
			return Intent{}, fmt.Errorf("%w: discrete branch %d outside {0,1,2}", arena.ErrInvalidAction, b)
		}
	}
	return Intent{A: float64(a.Branches[0] - 1), B: float64(a.Branches[1] - 1)}, nil
}

// Interpret decodes a and scales it by the configured maxima. No dt scaling
// happens here.
func (i *Interpreter) Interpret(a Action) (Command, error) {
	in, err := i.Decode(a)
	if err != nil {
		return Command{}, err
	}
	if i.model == arena.Holonomic {
		return Command{Velocity: r2.Vec{X: in.A * i.maxSpeed, Y: in.B * i.maxSpeed}}, nil
	}
	return Command{
		TurnRate:     in.A * i.maxAngularSpeed,
		ForwardSpeed: in.B * i.maxSpeed,
	}, nil
}
