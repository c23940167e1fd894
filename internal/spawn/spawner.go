// Package spawn places the agent and target at the start of each episode.
package spawn

import (
	"math"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/logging"
)

// Spawner samples agent and target positions uniformly inside the square
// [-range, range]^2 until they are at least minSeparation apart.
type Spawner struct {
	spawnRange    float64
	minSeparation float64
	maxAttempts   int
	seed          uint64
	dist          *distmv.Uniform
	logger        *log.Logger
}

type Option func(*Spawner)

func WithMaxAttempts(n int) Option {
	return func(s *Spawner) { s.maxAttempts = n }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Spawner) { s.logger = logging.OrDiscard(l) }
}

func New(spawnRange, minSeparation float64, seed uint64, opts ...Option) (*Spawner, error) {
	if !(spawnRange > 0) || math.IsInf(spawnRange, 0) {
		return nil, &arena.ConfigError{Field: "spawn_range", Value: spawnRange, Reason: "must be positive and finite"}
	}
	if minSeparation < 0 || math.IsNaN(minSeparation) {
		return nil, &arena.ConfigError{Field: "min_separation", Value: minSeparation, Reason: "must be non-negative"}
	}
	if minSeparation >= 2*spawnRange*math.Sqrt2 {
		return nil, &arena.ConfigError{Field: "min_separation", Value: minSeparation, Reason: "must be below the arena diagonal"}
	}

	s := &Spawner{
		spawnRange:    spawnRange,
		minSeparation: minSeparation,
		maxAttempts:   arena.DefaultMaxSpawnAttempts,
		logger:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxAttempts <= 0 {
		return nil, &arena.ConfigError{Field: "max_spawn_attempts", Value: float64(s.maxAttempts), Reason: "must be positive"}
	}
	s.Seed(seed)
	return s, nil
}

// FromConfig builds a spawner from environment configuration.
func FromConfig(cfg arena.Config, opts ...Option) (*Spawner, error) {
	opts = append([]Option{WithMaxAttempts(cfg.MaxSpawnAttempts)}, opts...)
	return New(cfg.SpawnRange, cfg.MinSeparation, cfg.Seed, opts...)
}

// Seed restarts the random stream.
func (s *Spawner) Seed(seed uint64) {
	bound := r1.Interval{Min: -s.spawnRange, Max: s.spawnRange}
	s.seed = seed
	s.dist = distmv.NewUniform([]r1.Interval{bound, bound, bound, bound}, rand.NewSource(seed))
}

func (s *Spawner) Range() float64         { return s.spawnRange }
func (s *Spawner) MinSeparation() float64 { return s.minSeparation }

// Spawn samples a fresh state with heading 0 and the matching episode
// bookkeeping stamped with now.
func (s *Spawner) Spawn(now float64) (arena.SpatialState, arena.EpisodeContext, error) {
	sample := make([]float64, 4)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.dist.Rand(sample)
		state := arena.SpatialState{
			Agent:  r2.Vec{X: sample[0], Y: sample[1]},
			Target: r2.Vec{X: sample[2], Y: sample[3]},
		}
		d := state.Distance()
		if d > 0 && d >= s.minSeparation {
			if attempt > 1 {
				s.logger.Debug("spawn retried", "attempts", attempt, "distance", d)
			}
			ctx, err := arena.NewEpisodeContext(d, now)
			if err != nil {
				return arena.SpatialState{}, arena.EpisodeContext{}, err
			}
			return state, ctx, nil
		}
	}
	return arena.SpatialState{}, arena.EpisodeContext{}, &arena.SpawnError{
		Attempts:      s.maxAttempts,
		MinSeparation: s.minSeparation,
	}
}
