package sim

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/integrators"
	"github.com/san-kum/reachsim/internal/logging"
	"github.com/san-kum/reachsim/internal/observe"
	"github.com/san-kum/reachsim/internal/reward"
	"github.com/san-kum/reachsim/internal/spawn"
	"github.com/san-kum/reachsim/internal/termination"
)

// Env is one environment instance. Configuration is fixed at construction.
type Env struct {
	cfg         arena.Config
	spawner     *spawn.Spawner
	encoder     observe.Encoder
	interpreter *action.Interpreter
	integrator  integrators.Integrator
	tracker     *integrators.MotionTracker
	shaper      reward.Shaper
	evaluator   *termination.Evaluator
	clock       arena.StepClock

	collider Collider
	animator Animator
	logger   *log.Logger

	state      arena.SpatialState
	episode    arena.EpisodeContext
	started    bool
	reached    bool
	episodes   int
	degenerate int
}

type Option func(*Env)

func WithCollider(c Collider) Option {
	return func(e *Env) { e.collider = c }
}

func WithAnimator(a Animator) Option {
	return func(e *Env) { e.animator = a }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Env) { e.logger = logging.OrDiscard(l) }
}

// WithEnders replaces the termination order. Enders run in the given order.
func WithEnders(enders ...termination.Ender) Option {
	return func(e *Env) { e.evaluator = termination.New(enders...) }
}

func NewEnv(cfg arena.Config, opts ...Option) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Env{
		cfg:         cfg,
		encoder:     observe.NewEncoder(cfg.MotionModel),
		interpreter: action.FromConfig(cfg),
		integrator:  integrators.New(cfg.MotionModel),
		tracker:     integrators.NewMotionTracker(),
		shaper:      reward.NewShaper(cfg.StepCost),
		evaluator:   termination.FromConfig(cfg),
		clock:       arena.StepClock{Dt: cfg.Dt},
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}

	sp, err := spawn.FromConfig(cfg, spawn.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	e.spawner = sp
	return e, nil
}

func (e *Env) Config() arena.Config             { return e.cfg }
func (e *Env) State() arena.SpatialState        { return e.state }
func (e *Env) Episode() arena.EpisodeContext    { return e.episode }
func (e *Env) ObservationSize() int             { return e.encoder.Size() }
func (e *Env) ObservationLabels() []string      { return e.encoder.Labels() }
func (e *Env) Episodes() int                    { return e.episodes }
func (e *Env) DegenerateCount() int             { return e.degenerate }
func (e *Env) Now() float64                     { return e.clock.Now() }
func (e *Env) Moving() bool                     { return e.tracker.Moving() }
func (e *Env) Interpreter() *action.Interpreter { return e.interpreter }

// Ended is true before the first Reset and after any termination signal.
func (e *Env) Ended() bool {
	return !e.started || e.evaluator.State() == termination.Ended
}

// Reseed restarts the spawn stream.
func (e *Env) Reseed(seed uint64) {
	e.spawner.Seed(seed)
}

// TargetReached records a trigger-enter notification from an event-driven
// collaborator. The next Step consumes it.
func (e *Env) TargetReached() {
	e.reached = true
}

// Reset spawns a new episode.
func (e *Env) Reset() (StepResult, error) {
	s, ctx, err := e.spawner.Spawn(e.clock.Now())
	if err != nil {
		return StepResult{}, err
	}
	return e.begin(s, ctx), nil
}

// ResetTo starts an episode from the given placement instead of sampling one.
func (e *Env) ResetTo(s arena.SpatialState) (StepResult, error) {
	if !s.IsValid() {
		return StepResult{}, arena.ErrInvalidState
	}
	ctx, err := arena.NewEpisodeContext(s.Distance(), e.clock.Now())
	if err != nil {
		return StepResult{}, err
	}
	return e.begin(s, ctx), nil
}

func (e *Env) begin(s arena.SpatialState, ctx arena.EpisodeContext) StepResult {
	e.state = s
	e.episode = ctx
	e.started = true
	e.reached = false
	e.episodes++
	e.evaluator.Reset()
	if e.tracker.Reset() && e.animator != nil {
		e.animator.MovingStateChanged(false)
	}
	if e.collider != nil {
		e.collider.Place(s)
	}

	e.logger.Debug("episode reset", "episode", e.episodes, "distance", ctx.StartingDistance)

	obs, degenerate := e.observe()
	return StepResult{
		Observation: obs,
		State:       s,
		Distance:    ctx.StartingDistance,
		Degenerate:  degenerate,
	}
}

// Observation re-encodes the current state.
func (e *Env) Observation() []float64 {
	obs, _ := e.encoder.Encode(e.state)
	return obs
}

func (e *Env) observe() ([]float64, bool) {
	obs, degenerate := e.encoder.Encode(e.state)
	if degenerate {
		e.degenerate++
		e.logger.Debug("degenerate geometry, zero direction observed", "episode", e.episodes, "step", e.episode.Steps)
	}
	return obs, degenerate
}

// Step advances one fixed timestep. Once a termination signal has fired it
// fails with ErrEpisodeEnded until Reset.
func (e *Env) Step(a action.Action) (StepResult, error) {
	if e.Ended() {
		return StepResult{}, arena.ErrEpisodeEnded
	}

	cmd, err := e.interpreter.Interpret(a)
	if err != nil {
		return StepResult{}, err
	}

	next := e.integrator.Step(e.state, cmd, e.cfg.Dt)
	if !next.IsValid() {
		return StepResult{}, &arena.StepError{
			Step:    e.episode.Steps,
			Time:    e.clock.Now(),
			State:   next,
			Wrapped: arena.ErrInvalidState,
		}
	}
	e.state = next
	e.clock.Advance()
	e.episode.Steps++

	if moving, changed := e.tracker.Update(cmd.Speed()); changed && e.animator != nil {
		e.animator.MovingStateChanged(moving)
	}
	if e.collider != nil && e.collider.Sync(e.state, e.cfg.Dt) {
		e.reached = true
	}

	obs, degenerate := e.observe()
	distance := e.state.Distance()
	rw, err := e.shaper.Compute(e.episode.LastDistance, distance, e.episode.StartingDistance)
	if err != nil {
		return StepResult{}, fmt.Errorf("episode %d: %w", e.episodes, err)
	}
	e.episode.LastDistance = distance

	// Elapsed comes from the step count so the time limit is exact.
	elapsed := float64(e.episode.Steps) * e.cfg.Dt
	sig, err := e.evaluator.Evaluate(termination.Input{
		TargetReached:    e.reached,
		Distance:         distance,
		StartingDistance: e.episode.StartingDistance,
		Elapsed:          elapsed,
	})
	if err != nil {
		return StepResult{}, err
	}
	e.reached = false

	if sig.Ended() {
		e.logger.Debug("episode ended", "episode", e.episodes, "outcome", sig.String(), "steps", e.episode.Steps)
	}

	return StepResult{
		Observation: obs,
		Reward:      rw,
		Signal:      sig,
		State:       e.state,
		Command:     cmd,
		Distance:    distance,
		Step:        e.episode.Steps,
		Elapsed:     elapsed,
		Degenerate:  degenerate,
	}, nil
}
