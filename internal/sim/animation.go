package sim

const (
	ClipMoving = "Run In Place"
	ClipIdle   = "Idle"
)

// AnimationLog is an Animator that records which clip would be playing.
type AnimationLog struct {
	Clips []string
}

func (a *AnimationLog) MovingStateChanged(moving bool) {
	if moving {
		a.Clips = append(a.Clips, ClipMoving)
		return
	}
	a.Clips = append(a.Clips, ClipIdle)
}

// Current is the active clip, Idle before any change.
func (a *AnimationLog) Current() string {
	if len(a.Clips) == 0 {
		return ClipIdle
	}
	return a.Clips[len(a.Clips)-1]
}
