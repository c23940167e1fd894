package physics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/reachsim/internal/arena"
)

// Proximity fires once per entry into the target circle.
type Proximity struct {
	AgentRadius  float64
	TargetRadius float64

	target r2.Vec
	inside bool
}

func NewProximity(agentRadius, targetRadius float64) *Proximity {
	return &Proximity{AgentRadius: agentRadius, TargetRadius: targetRadius}
}

func (p *Proximity) Place(s arena.SpatialState) {
	p.target = s.Target
	p.inside = false
}

func (p *Proximity) Sync(s arena.SpatialState, dt float64) bool {
	overlap := r2.Norm(r2.Sub(s.Agent, p.target)) < p.AgentRadius+p.TargetRadius
	entered := overlap && !p.inside
	p.inside = overlap
	return entered
}

// Inside reports whether the agent overlapped the target at the last Sync.
func (p *Proximity) Inside() bool { return p.inside }
