package physics

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/reachsim/internal/arena"
)

func TestProximityEntry(t *testing.T) {
	p := NewProximity(0.5, 0.5)
	start := arena.SpatialState{Agent: r2.Vec{X: 0, Y: 0}, Target: r2.Vec{X: 3, Y: 0}}
	p.Place(start)

	path := []struct {
		x       float64
		entered bool
	}{
		{1, false},
		{2.1, true},
		{2.5, false},
		{1.5, false},
		{2.2, true},
	}

	for i, step := range path {
		s := start
		s.Agent.X = step.x
		if got := p.Sync(s, 0.02); got != step.entered {
			t.Errorf("step %d at x=%f: expected entered=%v, got %v", i, step.x, step.entered, got)
		}
	}
}

func TestProximityPlaceClearsInside(t *testing.T) {
	p := NewProximity(0.5, 0.5)
	s := arena.SpatialState{Agent: r2.Vec{X: 2.5}, Target: r2.Vec{X: 3}}
	p.Place(s)
	if !p.Sync(s, 0.02) {
		t.Fatal("expected entry when spawned overlapping")
	}
	if !p.Inside() {
		t.Error("expected inside after entry")
	}

	p.Place(s)
	if p.Inside() {
		t.Error("place should clear the inside flag")
	}
	if !p.Sync(s, 0.02) {
		t.Error("expected a new entry after placement")
	}
}

func TestProximityUsesPlacedTarget(t *testing.T) {
	p := NewProximity(0.1, 0.1)
	p.Place(arena.SpatialState{Target: r2.Vec{X: 4, Y: 4}})
	if p.Sync(arena.SpatialState{Agent: r2.Vec{X: 0, Y: 0}, Target: r2.Vec{X: 0, Y: 0}}, 0.02) {
		t.Error("sync should test against the placed target")
	}
}
