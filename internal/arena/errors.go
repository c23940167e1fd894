package arena

import (
	"errors"
	"fmt"
)

// Domain errors for environment operations.
var (
	// ErrConfiguration indicates a parameter that makes the environment unusable.
	ErrConfiguration = errors.New("arena: invalid configuration")

	// ErrDegenerateGeometry indicates agent and target occupy the same point.
	ErrDegenerateGeometry = errors.New("arena: agent and target coincide")

	// ErrEpisodeEnded indicates a step was requested without a reset.
	ErrEpisodeEnded = errors.New("arena: episode ended, reset required")

	// ErrInvalidAction indicates an action payload outside the action space.
	ErrInvalidAction = errors.New("arena: invalid action")

	// ErrSpawnExhausted indicates the spawner could not satisfy the minimum separation.
	ErrSpawnExhausted = errors.New("arena: spawn attempts exhausted")

	// ErrInvalidState indicates a spatial state containing NaN or Inf.
	ErrInvalidState = errors.New("arena: invalid state (NaN or Inf detected)")
)

// ConfigError names the offending configuration field.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("arena: invalid %s=%g: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// SpawnError reports a spawner that ran out of attempts. It matches both
// ErrSpawnExhausted and ErrConfiguration.
type SpawnError struct {
	Attempts      int
	MinSeparation float64
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("arena: no placement with separation >= %g after %d attempts", e.MinSeparation, e.Attempts)
}

func (e *SpawnError) Unwrap() []error {
	return []error{ErrSpawnExhausted, ErrConfiguration}
}

// StepError wraps an error with step context.
type StepError struct {
	Step    int
	Time    float64
	State   SpatialState
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.3f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
