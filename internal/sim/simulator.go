package sim

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/reachsim/internal/logging"
)

// Runner drives an Env with a Policy across episodes.
type Runner struct {
	env       *Env
	policy    Policy
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func NewRunner(env *Env, policy Policy) *Runner {
	return &Runner{
		env:       env,
		policy:    policy,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logging.Discard(),
	}
}

func (r *Runner) AddMetric(m Metric)      { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)  { r.observers = append(r.observers, o) }
func (r *Runner) SetLogger(l *log.Logger) { r.logger = logging.OrDiscard(l) }
func (r *Runner) Env() *Env               { return r.env }
func (r *Runner) Policy() Policy          { return r.policy }
func (r *Runner) Metrics() []Metric       { return r.metrics }

func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := r.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Episodes: make([]*Episode, 0, cfg.Episodes),
		Metrics:  make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.Episodes; i++ {
		ep, err := r.RunEpisode(ctx, i < cfg.Record)
		if ep != nil {
			ep.Index = i
			result.StepsTaken += ep.Steps
		}
		if err != nil {
			return result, err
		}
		result.Episodes = append(result.Episodes, ep)

		for _, m := range r.metrics {
			m.Observe(ep)
		}
		r.logger.Info("episode finished",
			"episode", i, "outcome", ep.Outcome.String(), "steps", ep.Steps, "return", fmt.Sprintf("%.4f", ep.Return))
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunEpisode resets the env and steps it until a termination signal. With
// record set every transition is kept.
func (r *Runner) RunEpisode(ctx context.Context, record bool) (*Episode, error) {
	res, err := r.env.Reset()
	if err != nil {
		return nil, err
	}
	if rs, ok := r.policy.(Resetter); ok {
		rs.Reset()
	}
	return r.play(ctx, res, record)
}

// Continue plays out an episode already started with Reset or ResetTo.
func (r *Runner) Continue(ctx context.Context, start StepResult, record bool) (*Episode, error) {
	if rs, ok := r.policy.(Resetter); ok {
		rs.Reset()
	}
	return r.play(ctx, start, record)
}

func (r *Runner) play(ctx context.Context, res StepResult, record bool) (*Episode, error) {
	ep := &Episode{StartingDistance: res.Distance}
	if res.Degenerate {
		ep.Degenerate++
	}
	if record {
		ep.Transitions = append(ep.Transitions, Transition{
			State:       res.State,
			Observation: res.Observation,
		})
	}

	for !res.Done() {
		select {
		case <-ctx.Done():
			return ep, ctx.Err()
		default:
		}

		a := r.policy.Act(res.Observation, res.State)
		next, err := r.env.Step(a)
		if err != nil {
			return ep, err
		}
		res = next

		ep.Steps = res.Step
		ep.Duration = res.Elapsed
		ep.Return += res.Reward.Total
		ep.Shaping += res.Reward.Shaping
		ep.Penalty += res.Reward.Penalty
		ep.FinalDistance = res.Distance
		if res.Degenerate {
			ep.Degenerate++
		}
		if record {
			ep.Transitions = append(ep.Transitions, Transition{
				Step:        res.Step,
				Elapsed:     res.Elapsed,
				State:       res.State,
				Observation: res.Observation,
				Action:      a,
				Reward:      res.Reward,
				Signal:      res.Signal,
			})
		}

		for _, obs := range r.observers {
			obs.OnStep(a, res)
		}
	}

	ep.Outcome = res.Signal
	for _, obs := range r.observers {
		if eo, ok := obs.(EpisodeObserver); ok {
			eo.OnEpisode(ep)
		}
	}
	return ep, nil
}

func (r *Runner) validateConfig(cfg RunConfig) error {
	if cfg.Episodes <= 0 {
		return fmt.Errorf("episodes must be positive, got %d", cfg.Episodes)
	}
	if cfg.Record < 0 {
		return fmt.Errorf("record must be non-negative, got %d", cfg.Record)
	}
	return nil
}
