package experiment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/config"
	"github.com/san-kum/reachsim/internal/logging"
	"github.com/san-kum/reachsim/internal/sim"
)

type Config struct {
	Env      arena.Config
	Policy   string
	Collider string
	Episodes int
	Record   int
	Params   map[string]float64
}

// FromConfig converts a file/preset configuration.
func FromConfig(c *config.Config) (Config, error) {
	env, err := c.Arena()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Env:      env,
		Policy:   c.Policy,
		Collider: c.Collider,
		Episodes: c.Episodes,
		Record:   c.Record,
		Params: map[string]float64{
			"Kp": c.PolicyParams.Kp,
			"Ki": c.PolicyParams.Ki,
			"Kd": c.PolicyParams.Kd,
		},
	}, nil
}

type Experiment struct {
	cfg       Config
	registry  *Registry
	logger    *log.Logger
	runner    *sim.Runner
	animation *sim.AnimationLog
}

func New(cfg Config, registry *Registry, logger *log.Logger) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		logger:   logging.OrDiscard(logger),
	}
}

func (e *Experiment) Config() Config { return e.cfg }

// Setup builds the environment, policy, collider and default metrics.
func (e *Experiment) Setup() error {
	runner, anim, err := e.build(e.cfg.Env)
	if err != nil {
		return err
	}
	e.runner = runner
	e.animation = anim
	return nil
}

func (e *Experiment) build(env arena.Config) (*sim.Runner, *sim.AnimationLog, error) {
	collider, err := e.registry.GetCollider(e.cfg.Collider, env)
	if err != nil {
		return nil, nil, err
	}
	policy, err := e.registry.GetPolicy(e.cfg.Policy, env, e.cfg.Params)
	if err != nil {
		return nil, nil, err
	}

	anim := &sim.AnimationLog{}
	opts := []sim.Option{sim.WithAnimator(anim), sim.WithLogger(e.logger)}
	if collider != nil {
		opts = append(opts, sim.WithCollider(collider))
	}
	environment, err := sim.NewEnv(env, opts...)
	if err != nil {
		return nil, nil, err
	}

	runner := sim.NewRunner(environment, policy)
	runner.SetLogger(e.logger)
	for _, m := range e.registry.DefaultMetrics() {
		runner.AddMetric(m)
	}
	return runner, anim, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.runner == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.runner.Run(ctx, sim.RunConfig{Episodes: e.cfg.Episodes, Record: e.cfg.Record})
}

// Factory builds independent runners for an ensemble, one per seed.
func (e *Experiment) Factory() sim.RunnerFactory {
	return func(seed uint64) (*sim.Runner, error) {
		env := e.cfg.Env
		env.Seed = seed
		runner, _, err := e.build(env)
		return runner, err
	}
}

// GetRunner returns the underlying runner for adding observers
func (e *Experiment) GetRunner() *sim.Runner {
	return e.runner
}

// Animation is the clip log of the set-up environment.
func (e *Experiment) Animation() *sim.AnimationLog {
	return e.animation
}
