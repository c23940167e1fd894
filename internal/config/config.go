package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/reachsim/internal/arena"
)

const (
	DefaultEpisodes = 10
	DefaultPolicy   = "seek"
	DefaultCollider = "proximity"
	DefaultKp       = 2.0
	DefaultKi       = 0.0
	DefaultKd       = 0.1
)

type Config struct {
	Env          EnvConfig    `yaml:"env"`
	Policy       string       `yaml:"policy"`
	Collider     string       `yaml:"collider"`
	Episodes     int          `yaml:"episodes"`
	Record       int          `yaml:"record"`
	Seed         uint64       `yaml:"seed"`
	PolicyParams PolicyConfig `yaml:"policy_params"`
}

type EnvConfig struct {
	SpawnRange       float64 `yaml:"spawn_range"`
	MinSeparation    float64 `yaml:"min_separation"`
	MaxSpeed         float64 `yaml:"max_speed"`
	MaxAngularSpeed  float64 `yaml:"max_angular_speed"`
	TimeLimit        float64 `yaml:"time_limit"`
	StepCost         float64 `yaml:"step_cost"`
	DivergenceFactor float64 `yaml:"divergence_factor"`
	Dt               float64 `yaml:"dt"`
	ActionSpace      string  `yaml:"action_space"`
	MotionModel      string  `yaml:"motion_model"`
	MaxSpawnAttempts int     `yaml:"max_spawn_attempts"`
	AgentRadius      float64 `yaml:"agent_radius"`
	TargetRadius     float64 `yaml:"target_radius"`
}

type PolicyConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

func DefaultConfig() *Config {
	d := arena.DefaultConfig()
	return &Config{
		Env: EnvConfig{
			SpawnRange:       d.SpawnRange,
			MinSeparation:    d.MinSeparation,
			MaxSpeed:         d.MaxSpeed,
			MaxAngularSpeed:  d.MaxAngularSpeed,
			TimeLimit:        d.TimeLimit,
			StepCost:         d.StepCost,
			DivergenceFactor: d.DivergenceFactor,
			Dt:               d.Dt,
			ActionSpace:      d.ActionSpace.String(),
			MotionModel:      d.MotionModel.String(),
			MaxSpawnAttempts: d.MaxSpawnAttempts,
			AgentRadius:      d.AgentRadius,
			TargetRadius:     d.TargetRadius,
		},
		Policy:   DefaultPolicy,
		Collider: DefaultCollider,
		Episodes: DefaultEpisodes,
		Record:   1,
		PolicyParams: PolicyConfig{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Arena converts to a validated environment configuration.
func (c *Config) Arena() (arena.Config, error) {
	space, err := arena.ParseActionSpace(c.Env.ActionSpace)
	if err != nil {
		return arena.Config{}, err
	}
	model, err := arena.ParseMotionModel(c.Env.MotionModel)
	if err != nil {
		return arena.Config{}, err
	}

	out := arena.Config{
		SpawnRange:       c.Env.SpawnRange,
		MinSeparation:    c.Env.MinSeparation,
		MaxSpeed:         c.Env.MaxSpeed,
		MaxAngularSpeed:  c.Env.MaxAngularSpeed,
		TimeLimit:        c.Env.TimeLimit,
		StepCost:         c.Env.StepCost,
		DivergenceFactor: c.Env.DivergenceFactor,
		Dt:               c.Env.Dt,
		ActionSpace:      space,
		MotionModel:      model,
		MaxSpawnAttempts: c.Env.MaxSpawnAttempts,
		AgentRadius:      c.Env.AgentRadius,
		TargetRadius:     c.Env.TargetRadius,
		Seed:             c.Seed,
	}
	if err := out.Validate(); err != nil {
		return arena.Config{}, fmt.Errorf("config: %w", err)
	}
	return out, nil
}
