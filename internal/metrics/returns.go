package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/reachsim/internal/sim"
)

// MeanReturn averages total episode reward.
type MeanReturn struct {
	name    string
	returns []float64
}

func NewMeanReturn() *MeanReturn {
	return &MeanReturn{name: "mean_return"}
}

func (m *MeanReturn) Name() string { return m.name }

func (m *MeanReturn) Observe(ep *sim.Episode) {
	m.returns = append(m.returns, ep.Return)
}

func (m *MeanReturn) Value() float64 {
	if len(m.returns) == 0 {
		return 0
	}
	return stat.Mean(m.returns, nil)
}

func (m *MeanReturn) Reset() { m.returns = m.returns[:0] }

// ReturnStdDev is the sample standard deviation of episode returns.
type ReturnStdDev struct {
	name    string
	returns []float64
}

func NewReturnStdDev() *ReturnStdDev {
	return &ReturnStdDev{name: "return_std"}
}

func (m *ReturnStdDev) Name() string { return m.name }

func (m *ReturnStdDev) Observe(ep *sim.Episode) {
	m.returns = append(m.returns, ep.Return)
}

func (m *ReturnStdDev) Value() float64 {
	if len(m.returns) < 2 {
		return 0
	}
	return stat.StdDev(m.returns, nil)
}

func (m *ReturnStdDev) Reset() { m.returns = m.returns[:0] }

// Progress averages the shaping part of the return, the fraction of the
// starting distance closed per episode.
type Progress struct {
	name  string
	parts []float64
}

func NewProgress() *Progress {
	return &Progress{name: "mean_progress"}
}

func (p *Progress) Name() string { return p.name }

func (p *Progress) Observe(ep *sim.Episode) {
	p.parts = append(p.parts, ep.Shaping)
}

func (p *Progress) Value() float64 {
	if len(p.parts) == 0 {
		return 0
	}
	return stat.Mean(p.parts, nil)
}

func (p *Progress) Reset() { p.parts = p.parts[:0] }
