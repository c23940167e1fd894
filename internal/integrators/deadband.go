package integrators

// MovingThreshold is the speed, in units per second, above which the agent
// counts as moving.
const MovingThreshold = 0.02

// MotionTracker reports transitions between moving and idle.
type MotionTracker struct {
	Threshold float64
	moving    bool
}

func NewMotionTracker() *MotionTracker {
	return &MotionTracker{Threshold: MovingThreshold}
}

// Update records speed and reports whether the moving state flipped.
func (m *MotionTracker) Update(speed float64) (moving, changed bool) {
	if speed < 0 {
		speed = -speed
	}
	moving = speed > m.Threshold
	changed = moving != m.moving
	m.moving = moving
	return moving, changed
}

func (m *MotionTracker) Moving() bool { return m.moving }

// Reset returns to idle and reports whether that was a change.
func (m *MotionTracker) Reset() (changed bool) {
	changed = m.moving
	m.moving = false
	return changed
}
