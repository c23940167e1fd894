package control

import (
	"math"

	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
)

// Seek steers at the target using only the percept. For heading-based motion
// a PID on the heading error sets the turn and the throttle falls off with
// the error so the agent turns in place when facing away.
type Seek struct {
	space arena.ActionSpace
	model arena.MotionModel
	dt    float64
	sign  float64
	pid   *PID
}

func NewSeek(space arena.ActionSpace, model arena.MotionModel, dt float64) *Seek {
	pid := NewPID(2.0, 0, 0.1, 0)
	pid.Limit = 1
	return &Seek{space: space, model: model, dt: dt, sign: 1, pid: pid}
}

// NewFlee steers directly away from the target.
func NewFlee(space arena.ActionSpace, model arena.MotionModel, dt float64) *Seek {
	s := NewSeek(space, model, dt)
	s.sign = -1
	return s
}

func (s *Seek) PID() *PID { return s.pid }

func (s *Seek) Reset() { s.pid.Reset() }

func (s *Seek) Act(obs []float64, st arena.SpatialState) action.Action {
	dx, dz := s.sign*obs[0], s.sign*obs[2]

	if s.model == arena.Holonomic || len(obs) < 6 {
		return FromAxes(s.space, dx, dz)
	}

	fx, fz := obs[3], obs[5]
	// Positive error means the heading has to increase.
	headingErr := math.Atan2(fz*dx-fx*dz, fx*dx+fz*dz)
	turn := -s.pid.Update(headingErr, s.dt)
	throttle := math.Max(0, math.Cos(headingErr))
	return FromAxes(s.space, turn, throttle)
}

// HeadingError is the signed angle the agent must turn to face the target.
func HeadingError(st arena.SpatialState) float64 {
	off := st.Offset()
	f := st.Forward()
	return math.Atan2(f.Y*off.X-f.X*off.Y, f.X*off.X+f.Y*off.Y)
}
