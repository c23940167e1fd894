package control

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/observe"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		axis float64
		want int
	}{
		{-1, 0},
		{-0.34, 0},
		{-0.33, 1},
		{0, 1},
		{0.33, 1},
		{0.331, 2},
		{1, 2},
	}

	for _, tt := range tests {
		if got := Quantize(tt.axis); got != tt.want {
			t.Errorf("axis %f: expected %d, got %d", tt.axis, tt.want, got)
		}
	}
}

func TestHeuristic(t *testing.T) {
	h := NewHeuristic(arena.Continuous)
	h.SetAxes(0.25, -0.8)
	a := h.Act(nil, arena.SpatialState{})
	if a.Space != arena.Continuous || a.Values != [2]float64{0.25, -0.8} {
		t.Errorf("expected pass-through axes, got %v", a)
	}

	d := NewHeuristic(arena.Discrete)
	d.SetAxes(-1, 1)
	a = d.Act(nil, arena.SpatialState{})
	if a.Space != arena.Discrete || a.Branches != [2]int{0, 2} {
		t.Errorf("expected discrete (0, 2), got %v", a)
	}

	hor, ver := d.Axes()
	if hor != -1 || ver != 1 {
		t.Errorf("unexpected stored axes %f, %f", hor, ver)
	}
}

func TestZero(t *testing.T) {
	if a := NewZero(arena.Discrete).Act(nil, arena.SpatialState{}); a.Branches != [2]int{1, 1} {
		t.Errorf("expected discrete no-op, got %v", a)
	}
	if a := NewZero(arena.Continuous).Act(nil, arena.SpatialState{}); a.Values != [2]float64{} {
		t.Errorf("expected continuous no-op, got %v", a)
	}
}

func TestPID(t *testing.T) {
	ctrl := NewPID(10.0, 0.1, 5.0, 0.0)
	if u := ctrl.Update(1.0, 0.02); u >= 0 {
		t.Error("PID should output negative control for positive error")
	}

	ctrl.Limit = 1
	if u := ctrl.Update(5.0, 0.02); u != -1 {
		t.Errorf("expected clamped output -1, got %f", u)
	}

	ctrl.SetParam("Kp", 3)
	if ctrl.GetParams()["Kp"] != 3 {
		t.Error("SetParam did not update Kp")
	}

	ctrl.Reset()
	ctrl.Limit = 0
	ctrl.Kd = 0
	if u := ctrl.Update(1.0, 0.02); u != -3 {
		t.Errorf("expected proportional output after reset, got %f", u)
	}
}

func encode(model arena.MotionModel, s arena.SpatialState) []float64 {
	obs, _ := observe.NewEncoder(model).Encode(s)
	return obs
}

func TestSeekHolonomic(t *testing.T) {
	s := arena.SpatialState{Agent: r2.Vec{X: 0, Y: 0}, Target: r2.Vec{X: 3, Y: 4}}
	a := NewSeek(arena.Continuous, arena.Holonomic, 0.02).Act(encode(arena.Holonomic, s), s)
	if math.Abs(a.Values[0]-0.6) > 1e-9 || math.Abs(a.Values[1]-0.8) > 1e-9 {
		t.Errorf("expected (0.6, 0.8), got %v", a)
	}

	f := NewFlee(arena.Discrete, arena.Holonomic, 0.02).Act(encode(arena.Holonomic, s), s)
	if f.Branches != [2]int{0, 0} {
		t.Errorf("expected flee discrete (0, 0), got %v", f)
	}
}

func TestSeekHeadingTurnsTowardTarget(t *testing.T) {
	tests := []struct {
		name    string
		target  r2.Vec
		turnDir float64
	}{
		{"target to the right", r2.Vec{X: 4, Y: 0}, 1},
		{"target to the left", r2.Vec{X: -4, Y: 0}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := arena.SpatialState{Target: tt.target}
			a := NewSeek(arena.Continuous, arena.HeadingBased, 0.02).Act(encode(arena.HeadingBased, s), s)
			if a.Values[0]*tt.turnDir <= 0 {
				t.Errorf("expected turn sign %f, got %f", tt.turnDir, a.Values[0])
			}
			if math.Abs(HeadingError(s)-tt.turnDir*math.Pi/2) > 1e-9 {
				t.Errorf("expected heading error %f, got %f", tt.turnDir*math.Pi/2, HeadingError(s))
			}
		})
	}

	ahead := arena.SpatialState{Target: r2.Vec{X: 0, Y: 4}}
	a := NewSeek(arena.Continuous, arena.HeadingBased, 0.02).Act(encode(arena.HeadingBased, ahead), ahead)
	if math.Abs(a.Values[0]) > 1e-9 || math.Abs(a.Values[1]-1) > 1e-9 {
		t.Errorf("expected straight ahead at full throttle, got %v", a)
	}
}

func TestSeekReachesTargetHeading(t *testing.T) {
	interp := action.New(arena.Continuous, arena.HeadingBased, 2, 90)
	seek := NewSeek(arena.Continuous, arena.HeadingBased, 0.02)
	s := arena.SpatialState{Agent: r2.Vec{X: 1, Y: 1}, Heading: 2.5, Target: r2.Vec{X: -3, Y: 2}}

	for i := 0; i < 1500 && s.Distance() > 0.2; i++ {
		cmd, err := interp.Interpret(seek.Act(encode(arena.HeadingBased, s), s))
		if err != nil {
			t.Fatalf("interpret failed: %v", err)
		}
		s.Heading += cmd.TurnRate * 0.02
		s.Agent = r2.Add(s.Agent, r2.Scale(cmd.ForwardSpeed*0.02, s.Forward()))
	}
	if s.Distance() > 0.2 {
		t.Errorf("seek did not reach the target, distance %f", s.Distance())
	}
}

func TestRandomDeterministic(t *testing.T) {
	for _, space := range []arena.ActionSpace{arena.Continuous, arena.Discrete} {
		a, b := NewRandom(space, 9), NewRandom(space, 9)
		interp := action.New(space, arena.HeadingBased, 2, 90)
		for i := 0; i < 200; i++ {
			x, y := a.Act(nil, arena.SpatialState{}), b.Act(nil, arena.SpatialState{})
			if x != y {
				t.Fatalf("%s step %d: %v vs %v", space, i, x, y)
			}
			if _, err := interp.Decode(x); err != nil {
				t.Fatalf("%s step %d: random action rejected: %v", space, i, err)
			}
			if space == arena.Continuous && (math.Abs(x.Values[0]) > 1 || math.Abs(x.Values[1]) > 1) {
				t.Fatalf("continuous action %v outside [-1, 1]", x)
			}
		}
	}
}

func TestReplay(t *testing.T) {
	recorded := []action.Action{action.Discrete(0, 2), action.Discrete(2, 2)}
	r := NewReplay(arena.Discrete, recorded)

	if a := r.Act(nil, arena.SpatialState{}); a != recorded[0] {
		t.Errorf("expected %v, got %v", recorded[0], a)
	}
	r.Act(nil, arena.SpatialState{})
	if r.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", r.Remaining())
	}
	if a := r.Act(nil, arena.SpatialState{}); a != action.Noop(arena.Discrete) {
		t.Errorf("expected no-op after the recording, got %v", a)
	}

	r.Reset()
	if r.Remaining() != 2 {
		t.Error("reset should rewind")
	}
}
