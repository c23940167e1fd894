package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/control"
	"github.com/san-kum/reachsim/internal/sim"
)

const (
	width           = 60
	height          = 22
	historyCapacity = 300
	trailCapacity   = 120

	// AxisDecay is applied to each axis on ticks without input, so a
	// released key eases back to no-op.
	AxisDecay = 0.8
	// EndPause is how many ticks the outcome banner stays up before the
	// next episode starts.
	EndPause = 45
)

type TickMsg time.Time

type point struct{ x, z float64 }

// Model drives a sim.Env from the keyboard through a control.Heuristic.
type Model struct {
	env   *sim.Env
	pilot *control.Heuristic
	anim  *sim.AnimationLog
	tick  time.Duration

	canvas *Canvas
	theme  Theme
	styles Styles

	last     sim.StepResult
	lastAct  action.Action
	hor, ver float64
	running  bool
	showHelp bool

	trail     []point
	rewards   []float64
	distances []float64
	ret       float64
	outcomes  map[arena.Reason]int
	endTicks  int
	err       error
}

// NewModel resets env and returns a play model. anim may be nil; pass the
// same log that was given to sim.WithAnimator to show the active clip.
func NewModel(env *sim.Env, anim *sim.AnimationLog) (Model, error) {
	m := Model{
		env:      env,
		pilot:    control.NewHeuristic(env.Config().ActionSpace),
		anim:     anim,
		tick:     time.Duration(env.Config().Dt * float64(time.Second)),
		canvas:   NewCanvas(width, height),
		theme:    Themes[0],
		styles:   NewStyles(Themes[0]),
		running:  true,
		outcomes: make(map[arena.Reason]int),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func Run(env *sim.Env, anim *sim.AnimationLog) error {
	m, err := NewModel(env, anim)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.nextTick()
}

func (m Model) nextTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.err = m.reset()
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		case "left", "a":
			m.hor = -1
		case "right", "d":
			m.hor = 1
		case "up", "w":
			m.ver = 1
		case "down", "s":
			m.ver = -1
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.nextTick()
	}
	return m, nil
}

// advance runs one environment step, or counts down the banner once the
// episode has ended.
func (m *Model) advance() {
	if m.env.Ended() {
		m.endTicks--
		if m.endTicks <= 0 {
			m.err = m.reset()
		}
		return
	}

	m.pilot.SetAxes(m.hor, m.ver)
	m.lastAct = m.pilot.Act(m.last.Observation, m.env.State())
	m.hor *= AxisDecay
	m.ver *= AxisDecay

	res, err := m.env.Step(m.lastAct)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.record(res)
	if res.Done() {
		m.outcomes[res.Signal.Reason]++
		m.endTicks = EndPause
	}
}

func (m *Model) record(res sim.StepResult) {
	m.last = res
	m.ret += res.Reward.Total
	m.rewards = appendCapped(m.rewards, res.Reward.Total, historyCapacity)
	m.distances = appendCapped(m.distances, res.Distance, historyCapacity)
	m.trail = append(m.trail, point{res.State.Agent.X, res.State.Agent.Y})
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
}

func (m *Model) reset() error {
	res, err := m.env.Reset()
	if err != nil {
		return err
	}
	m.last = res
	m.lastAct = action.Noop(m.env.Config().ActionSpace)
	m.hor, m.ver = 0, 0
	m.ret = 0
	m.endTicks = 0
	m.trail = m.trail[:0]
	m.rewards = m.rewards[:0]
	m.distances = append(m.distances[:0], res.Distance)
	return nil
}

func appendCapped(xs []float64, v float64, capacity int) []float64 {
	xs = append(xs, v)
	if len(xs) > capacity {
		xs = xs[len(xs)-capacity:]
	}
	return xs
}

// extent is the world half-width that keeps agent and target on screen.
func extent(cfg arena.Config, s arena.SpatialState) float64 {
	e := cfg.SpawnRange
	for _, v := range []float64{s.Agent.X, s.Agent.Y, s.Target.X, s.Target.Y} {
		e = math.Max(e, math.Abs(v))
	}
	return e * 1.1
}

func (m *Model) draw() {
	cfg := m.env.Config()
	s := m.last.State
	w, h := m.canvas.PixelSize()
	vp := Viewport{Extent: extent(cfg, s), Width: w, Height: h}

	m.canvas.Clear()
	m.canvas.DrawBorder()

	for _, p := range m.trail {
		m.canvas.Set(vp.Project(p.x, p.z))
	}

	tx, ty := vp.Project(s.Target.X, s.Target.Y)
	m.canvas.DrawCircle(tx, ty, max(2, vp.Length(cfg.TargetRadius)))
	m.canvas.Set(tx, ty)

	ax, ay := vp.Project(s.Agent.X, s.Agent.Y)
	m.canvas.FillSquare(ax, ay, 1)

	// Heading-based agents show their facing, holonomic ones their velocity.
	dir := s.Forward()
	if cfg.MotionModel == arena.Holonomic {
		v := m.last.Command.Velocity
		if n := math.Hypot(v.X, v.Y); n > 0 {
			dir.X, dir.Y = v.X/n, v.Y/n
		} else {
			return
		}
	}
	reach := vp.Extent * 0.12
	hx, hy := vp.Project(s.Agent.X+dir.X*reach, s.Agent.Y+dir.Y*reach)
	m.canvas.DrawLine(ax, ay, hx, hy)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.Banner[arena.Failure].Render("ERROR: " + m.err.Error())
	case m.env.Ended():
		return m.styles.Banner[m.last.Signal.Reason].Render(strings.ToUpper(m.last.Signal.String()))
	case !m.running:
		return m.styles.Paused.Render("PAUSED")
	}
	return m.styles.Running.Render("RUNNING")
}

func (m Model) View() string {
	m.draw()
	cfg := m.env.Config()
	st := m.styles

	var s strings.Builder
	s.WriteString(st.Header.Render(fmt.Sprintf("REACH  %s / %s", cfg.MotionModel, cfg.ActionSpace)) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Episode", fmt.Sprintf("%d", m.env.Episodes()))
	row("Step", fmt.Sprintf("%d", m.last.Step))
	row("Time", fmt.Sprintf("%s %.1fs", ProgressBar(m.last.Elapsed/cfg.TimeLimit, 12), m.last.Elapsed))
	row("Distance", fmt.Sprintf("%.3f", m.last.Distance))
	row("Reward", fmt.Sprintf("%+.5f", m.last.Reward.Total))
	row("Return", fmt.Sprintf("%+.4f", m.ret))
	row("Action", m.lastAct.String())
	if m.anim != nil {
		row("Clip", m.anim.Current())
	}
	row("Outcomes", fmt.Sprintf("S:%d F:%d T:%d",
		m.outcomes[arena.Success], m.outcomes[arena.Failure], m.outcomes[arena.Timeout]))

	s.WriteString("\n" + st.Label.Render("Reward") + Sparkline(m.rewards, 28) + "\n")
	if len(m.distances) > 1 {
		chart := asciigraph.Plot(m.distances, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Distance"))
		s.WriteString(st.Graph.Render(chart) + "\n")
	}
	s.WriteString(st.Help.Render("←→↑↓/WASD:Steer SP:Pause\nR:New episode T:Theme ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.Canvas.Render(m.canvas.String()), st.Stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Arrows / WASD  steer. Heading mode: left/right turn, up/down throttle.
                 Plane mode: left/right and up/down set x and z velocity.
  Space          pause or resume
  R              abandon the episode and respawn
  T              cycle color themes
  Q              quit
`
