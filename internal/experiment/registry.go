package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/control"
	"github.com/san-kum/reachsim/internal/metrics"
	"github.com/san-kum/reachsim/internal/physics"
	"github.com/san-kum/reachsim/internal/sim"
)

type PolicyFactory func(cfg arena.Config, params map[string]float64) sim.Policy

type ColliderFactory func(cfg arena.Config) sim.Collider

type Registry struct {
	policies  map[string]PolicyFactory
	colliders map[string]ColliderFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		policies:  make(map[string]PolicyFactory),
		colliders: make(map[string]ColliderFactory),
	}

	r.policies["zero"] = func(cfg arena.Config, params map[string]float64) sim.Policy {
		return control.NewZero(cfg.ActionSpace)
	}
	r.policies["seek"] = func(cfg arena.Config, params map[string]float64) sim.Policy {
		s := control.NewSeek(cfg.ActionSpace, cfg.MotionModel, cfg.Dt)
		tune(s.PID(), params)
		return s
	}
	r.policies["flee"] = func(cfg arena.Config, params map[string]float64) sim.Policy {
		s := control.NewFlee(cfg.ActionSpace, cfg.MotionModel, cfg.Dt)
		tune(s.PID(), params)
		return s
	}
	r.policies["random"] = func(cfg arena.Config, params map[string]float64) sim.Policy {
		// Offset so the policy stream differs from the spawn stream.
		return control.NewRandom(cfg.ActionSpace, cfg.Seed+1)
	}

	r.colliders["none"] = func(cfg arena.Config) sim.Collider { return nil }
	r.colliders["proximity"] = func(cfg arena.Config) sim.Collider {
		return physics.NewProximity(cfg.AgentRadius, cfg.TargetRadius)
	}
	r.colliders["box2d"] = func(cfg arena.Config) sim.Collider {
		return physics.NewBox2D(cfg.AgentRadius, cfg.TargetRadius)
	}

	return r
}

func tune(pid *control.PID, params map[string]float64) {
	for _, k := range []string{"Kp", "Ki", "Kd"} {
		if v, ok := params[k]; ok {
			pid.SetParam(k, v)
		}
	}
}

func (r *Registry) RegisterPolicy(name string, f PolicyFactory)     { r.policies[name] = f }
func (r *Registry) RegisterCollider(name string, f ColliderFactory) { r.colliders[name] = f }

func (r *Registry) GetPolicy(name string, cfg arena.Config, params map[string]float64) (sim.Policy, error) {
	fn, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy: %s", name)
	}
	return fn(cfg, params), nil
}

func (r *Registry) GetCollider(name string, cfg arena.Config) (sim.Collider, error) {
	fn, ok := r.colliders[name]
	if !ok {
		return nil, fmt.Errorf("unknown collider: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListPolicies() []string  { return sortedKeys(r.policies) }
func (r *Registry) ListColliders() []string { return sortedKeys(r.colliders) }

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Default()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
