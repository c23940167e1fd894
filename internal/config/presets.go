package config

import "sort"

// Presets reproduce the three original controller setups.
var Presets = map[string]*Config{
	"plane": {
		Env: EnvConfig{
			SpawnRange: 5, MinSeparation: 0, MaxSpeed: 2, MaxAngularSpeed: 90,
			TimeLimit: 30, StepCost: 0.0001, DivergenceFactor: 2, Dt: 0.02,
			ActionSpace: "continuous", MotionModel: "holonomic",
			MaxSpawnAttempts: 1000, AgentRadius: 0.5, TargetRadius: 0.5,
		},
		Policy: "seek", Collider: "proximity", Episodes: 10, Record: 1,
		PolicyParams: PolicyConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd},
	},
	"heading": {
		Env: EnvConfig{
			SpawnRange: 5, MinSeparation: 2, MaxSpeed: 2, MaxAngularSpeed: 90,
			TimeLimit: 30, StepCost: 0.0005, DivergenceFactor: 2, Dt: 0.02,
			ActionSpace: "continuous", MotionModel: "heading",
			MaxSpawnAttempts: 1000, AgentRadius: 0.5, TargetRadius: 0.5,
		},
		Policy: "seek", Collider: "proximity", Episodes: 10, Record: 1,
		PolicyParams: PolicyConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd},
	},
	"heading_discrete": {
		Env: EnvConfig{
			SpawnRange: 5, MinSeparation: 2, MaxSpeed: 2, MaxAngularSpeed: 90,
			TimeLimit: 30, StepCost: 0.0005, DivergenceFactor: 2, Dt: 0.02,
			ActionSpace: "discrete", MotionModel: "heading",
			MaxSpawnAttempts: 1000, AgentRadius: 0.5, TargetRadius: 0.5,
		},
		Policy: "seek", Collider: "box2d", Episodes: 10, Record: 1,
		PolicyParams: PolicyConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
