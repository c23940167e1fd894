package arena

import "math"

// Defaults mirror the original controllers.
const (
	DefaultSpawnRange       = 5.0
	DefaultMaxSpeed         = 2.0
	DefaultMaxAngularSpeed  = 90.0
	DefaultTimeLimit        = 30.0
	DefaultStepCost         = 0.0001
	DefaultDivergence       = 2.0
	DefaultDt               = 0.02
	DefaultMaxSpawnAttempts = 1000
	DefaultAgentRadius      = 0.5
	DefaultTargetRadius     = 0.5
)

// Config is fixed for the lifetime of an environment.
type Config struct {
	SpawnRange       float64
	MinSeparation    float64
	MaxSpeed         float64
	MaxAngularSpeed  float64 // degrees per second
	TimeLimit        float64
	StepCost         float64
	DivergenceFactor float64
	Dt               float64
	ActionSpace      ActionSpace
	MotionModel      MotionModel
	MaxSpawnAttempts int
	AgentRadius      float64
	TargetRadius     float64
	Seed             uint64
}

func DefaultConfig() Config {
	return Config{
		SpawnRange:       DefaultSpawnRange,
		MinSeparation:    0,
		MaxSpeed:         DefaultMaxSpeed,
		MaxAngularSpeed:  DefaultMaxAngularSpeed,
		TimeLimit:        DefaultTimeLimit,
		StepCost:         DefaultStepCost,
		DivergenceFactor: DefaultDivergence,
		Dt:               DefaultDt,
		ActionSpace:      Continuous,
		MotionModel:      Holonomic,
		MaxSpawnAttempts: DefaultMaxSpawnAttempts,
		AgentRadius:      DefaultAgentRadius,
		TargetRadius:     DefaultTargetRadius,
	}
}

// MaxSeparation is the arena diagonal, the largest distance a spawn can produce.
func (c Config) MaxSeparation() float64 {
	return 2 * c.SpawnRange * math.Sqrt2
}

// ObservationSize is 3 for holonomic motion and 6 when heading is observed.
func (c Config) ObservationSize() int {
	if c.MotionModel == HeadingBased {
		return 6
	}
	return 3
}

// Validate returns a *ConfigError for the first unusable field.
func (c Config) Validate() error {
	positive := []struct {
		field string
		value float64
	}{
		{"spawn_range", c.SpawnRange},
		{"max_speed", c.MaxSpeed},
		{"time_limit", c.TimeLimit},
		{"divergence_factor", c.DivergenceFactor},
		{"dt", c.Dt},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return &ConfigError{Field: p.field, Value: p.value, Reason: "must be positive and finite"}
		}
	}

	if c.MinSeparation < 0 || math.IsNaN(c.MinSeparation) {
		return &ConfigError{Field: "min_separation", Value: c.MinSeparation, Reason: "must be non-negative"}
	}
	if c.MinSeparation >= c.MaxSeparation() {
		return &ConfigError{Field: "min_separation", Value: c.MinSeparation, Reason: "must be below the arena diagonal"}
	}
	if c.MotionModel == HeadingBased && (!(c.MaxAngularSpeed > 0) || math.IsInf(c.MaxAngularSpeed, 0)) {
		return &ConfigError{Field: "max_angular_speed", Value: c.MaxAngularSpeed, Reason: "must be positive for heading-based motion"}
	}
	if c.StepCost < 0 || math.IsNaN(c.StepCost) {
		return &ConfigError{Field: "step_cost", Value: c.StepCost, Reason: "must be non-negative"}
	}
	if c.MaxSpawnAttempts <= 0 {
		return &ConfigError{Field: "max_spawn_attempts", Value: float64(c.MaxSpawnAttempts), Reason: "must be positive"}
	}
	if c.AgentRadius < 0 || c.TargetRadius < 0 {
		return &ConfigError{Field: "radius", Value: math.Min(c.AgentRadius, c.TargetRadius), Reason: "must be non-negative"}
	}
	switch c.ActionSpace {
	case Continuous, Discrete:
	default:
		return &ConfigError{Field: "action_space", Value: float64(c.ActionSpace), Reason: "unknown action space"}
	}
	switch c.MotionModel {
	case Holonomic, HeadingBased:
	default:
		return &ConfigError{Field: "motion_model", Value: float64(c.MotionModel), Reason: "unknown motion model"}
	}
	return nil
}
