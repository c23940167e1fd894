package arena

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ActionSpace selects how raw policy output is decoded.
type ActionSpace int

const (
	Continuous ActionSpace = iota
	Discrete
)

func (a ActionSpace) String() string {
	switch a {
	case Continuous:
		return "continuous"
	case Discrete:
		return "discrete"
	}
	return fmt.Sprintf("ActionSpace(%d)", int(a))
}

func ParseActionSpace(s string) (ActionSpace, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous", "":
		return Continuous, nil
	case "discrete":
		return Discrete, nil
	}
	return 0, fmt.Errorf("%w: unknown action space %q", ErrConfiguration, s)
}

// MotionModel selects how commands move the agent.
type MotionModel int

const (
	Holonomic MotionModel = iota
	HeadingBased
)

func (m MotionModel) String() string {
	switch m {
	case Holonomic:
		return "holonomic"
	case HeadingBased:
		return "heading"
	}
	return fmt.Sprintf("MotionModel(%d)", int(m))
}

func ParseMotionModel(s string) (MotionModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "holonomic", "plane", "":
		return Holonomic, nil
	case "heading", "heading_based":
		return HeadingBased, nil
	}
	return 0, fmt.Errorf("%w: unknown motion model %q", ErrConfiguration, s)
}

// SpatialState is the agent and target on the ground plane.
// Heading is in radians, measured clockwise from +z seen from above.
type SpatialState struct {
	Agent   r2.Vec
	Heading float64
	Target  r2.Vec
}

// Offset is the vector from the agent to the target.
func (s SpatialState) Offset() r2.Vec {
	return r2.Sub(s.Target, s.Agent)
}

// Distance is the planar Euclidean distance between agent and target.
func (s SpatialState) Distance() float64 {
	return r2.Norm(s.Offset())
}

// Forward is the agent's facing direction as a planar unit vector.
func (s SpatialState) Forward() r2.Vec {
	return Forward(s.Heading)
}

// Forward3 is the facing direction lifted into 3-D with a zero y component.
func (s SpatialState) Forward3() r3.Vec {
	return Lift(s.Forward())
}

func (s SpatialState) IsValid() bool {
	for _, v := range [...]float64{s.Agent.X, s.Agent.Y, s.Heading, s.Target.X, s.Target.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Forward returns the planar unit vector for a heading.
func Forward(heading float64) r2.Vec {
	sin, cos := math.Sincos(heading)
	return r2.Vec{X: sin, Y: cos}
}

// Lift maps a planar (x, z) vector to (x, 0, z).
func Lift(v r2.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: 0, Z: v.Y}
}

// EpisodeContext is the bookkeeping of the running episode.
type EpisodeContext struct {
	StartingDistance float64
	LastDistance     float64
	StartingTime     float64
	Steps            int
}

func NewEpisodeContext(distance, now float64) (EpisodeContext, error) {
	if !(distance > 0) || math.IsInf(distance, 0) {
		return EpisodeContext{}, fmt.Errorf("%w: starting distance %g", ErrDegenerateGeometry, distance)
	}
	return EpisodeContext{
		StartingDistance: distance,
		LastDistance:     distance,
		StartingTime:     now,
	}, nil
}

func (c EpisodeContext) Elapsed(now float64) float64 {
	return now - c.StartingTime
}

// Reason is the outcome carried by a Signal.
type Reason int

const (
	Running Reason = iota
	Success
	Failure
	Timeout
)

func (r Reason) String() string {
	switch r {
	case Running:
		return "running"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Timeout:
		return "timeout"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

func ParseReason(s string) (Reason, error) {
	for _, r := range []Reason{Running, Success, Failure, Timeout} {
		if r.String() == s {
			return r, nil
		}
	}
	return Running, fmt.Errorf("unknown reason %q", s)
}

func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Reason) UnmarshalText(b []byte) error {
	parsed, err := ParseReason(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Signal is the termination verdict of one step.
type Signal struct {
	Reason Reason
	Cause  string
}

func (s Signal) Ended() bool { return s.Reason != Running }

func (s Signal) String() string {
	if s.Cause == "" {
		return s.Reason.String()
	}
	return s.Reason.String() + "(" + s.Cause + ")"
}

// StepClock derives time from a tick count so long episodes do not
// accumulate floating point drift.
type StepClock struct {
	Dt    float64
	ticks int64
}

func (c *StepClock) Now() float64 { return float64(c.ticks) * c.Dt }
func (c *StepClock) Advance()     { c.ticks++ }
