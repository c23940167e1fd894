package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
)

type zeroPolicy struct{ resets int }

func (p *zeroPolicy) Act(obs []float64, s arena.SpatialState) action.Action {
	return action.Continuous(0, 0)
}
func (p *zeroPolicy) Reset() { p.resets++ }

// towardPolicy follows the observed direction at full speed.
type towardPolicy struct{}

func (towardPolicy) Act(obs []float64, s arena.SpatialState) action.Action {
	return action.Continuous(obs[0], obs[2])
}

type countMetric struct {
	episodes int
	steps    int
}

func (m *countMetric) Name() string        { return "count" }
func (m *countMetric) Observe(ep *Episode) { m.episodes++; m.steps += ep.Steps }
func (m *countMetric) Value() float64      { return float64(m.steps) }
func (m *countMetric) Reset()              { m.episodes, m.steps = 0, 0 }

type recordingObserver struct {
	steps    int
	episodes int
}

func (o *recordingObserver) OnStep(a action.Action, r StepResult) { o.steps++ }
func (o *recordingObserver) OnEpisode(ep *Episode)                { o.episodes++ }

func shortConfig() arena.Config {
	cfg := arena.DefaultConfig()
	cfg.TimeLimit = 0.2
	cfg.Seed = 3
	return cfg
}

func TestRunnerRun(t *testing.T) {
	env, _ := NewEnv(shortConfig())
	policy := &zeroPolicy{}
	runner := NewRunner(env, policy)

	metric := &countMetric{}
	obs := &recordingObserver{}
	runner.AddMetric(metric)
	runner.AddObserver(obs)

	result, err := runner.Run(context.Background(), RunConfig{Episodes: 4, Record: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Episodes) != 4 {
		t.Fatalf("expected 4 episodes, got %d", len(result.Episodes))
	}
	for i, ep := range result.Episodes {
		if ep.Index != i {
			t.Errorf("expected index %d, got %d", i, ep.Index)
		}
		if ep.Outcome.Reason != arena.Timeout {
			t.Errorf("episode %d: expected timeout, got %s", i, ep.Outcome)
		}
		// 0.2s at dt 0.02 is exactly 10 steps, the 11th exceeds it.
		if ep.Steps != 11 {
			t.Errorf("episode %d: expected 11 steps, got %d", i, ep.Steps)
		}
	}

	if len(result.Episodes[0].Transitions) != 12 {
		t.Errorf("expected initial + 11 transitions, got %d", len(result.Episodes[0].Transitions))
	}
	if result.Episodes[1].Transitions != nil {
		t.Error("only the first episode should be recorded")
	}

	if result.StepsTaken != 44 || result.Metrics["count"] != 44 {
		t.Errorf("expected 44 steps, got %d / %f", result.StepsTaken, result.Metrics["count"])
	}
	if metric.episodes != 4 || obs.episodes != 4 || obs.steps != 44 {
		t.Errorf("unexpected hook counts: metric %d, observer %d/%d", metric.episodes, obs.episodes, obs.steps)
	}
	if policy.resets != 4 {
		t.Errorf("expected policy reset per episode, got %d", policy.resets)
	}
	if c := result.Outcomes()[arena.Timeout]; c != 4 {
		t.Errorf("expected 4 timeouts, got %d", c)
	}
	if len(result.Returns()) != 4 {
		t.Error("expected one return per episode")
	}
}

func TestRunnerInvalidConfig(t *testing.T) {
	env, _ := NewEnv(shortConfig())
	runner := NewRunner(env, &zeroPolicy{})

	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"zero episodes", RunConfig{Episodes: 0}},
		{"negative episodes", RunConfig{Episodes: -1}},
		{"negative record", RunConfig{Episodes: 1, Record: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runner.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunnerCanceled(t *testing.T) {
	env, _ := NewEnv(shortConfig())
	runner := NewRunner(env, &zeroPolicy{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, RunConfig{Episodes: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunnerReturnTelescopes(t *testing.T) {
	cfg := arena.DefaultConfig()
	cfg.Seed = 11
	env, _ := NewEnv(cfg)
	runner := NewRunner(env, towardPolicy{})

	ep, err := runner.RunEpisode(context.Background(), false)
	if err != nil {
		t.Fatalf("episode failed: %v", err)
	}
	want := (ep.StartingDistance - ep.FinalDistance) / ep.StartingDistance
	if math.Abs(ep.Shaping-want) > 1e-9 {
		t.Errorf("expected shaping %f, got %f", want, ep.Shaping)
	}
	if math.Abs(ep.Penalty+float64(ep.Steps)*cfg.StepCost) > 1e-9 {
		t.Errorf("expected penalty %f, got %f", -float64(ep.Steps)*cfg.StepCost, ep.Penalty)
	}
}

func TestEnsembleRun(t *testing.T) {
	factory := func(seed uint64) (*Runner, error) {
		cfg := shortConfig()
		cfg.Seed = seed
		env, err := NewEnv(cfg)
		if err != nil {
			return nil, err
		}
		return NewRunner(env, &zeroPolicy{}), nil
	}

	ens := NewEnsemble(factory, 4, 100)
	results, err := ens.Run(context.Background(), RunConfig{Episodes: 2})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	first := results[0].Episodes[0].StartingDistance
	same := true
	for _, r := range results[1:] {
		if r.Episodes[0].StartingDistance != first {
			same = false
		}
	}
	if same {
		t.Error("differently seeded runs should spawn differently")
	}

	again, _ := ens.Run(context.Background(), RunConfig{Episodes: 2})
	for i := range results {
		if results[i].Episodes[0].StartingDistance != again[i].Episodes[0].StartingDistance {
			t.Errorf("run %d not reproducible", i)
		}
	}
}

func TestEnsembleFactoryError(t *testing.T) {
	boom := errors.New("boom")
	ens := NewEnsemble(func(seed uint64) (*Runner, error) { return nil, boom }, 2, 0)
	if _, err := ens.Run(context.Background(), RunConfig{Episodes: 1}); !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
}
