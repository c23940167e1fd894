package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/sim"
)

// MeanLength averages episode length in steps.
type MeanLength struct {
	name    string
	lengths []float64
}

func NewMeanLength() *MeanLength {
	return &MeanLength{name: "mean_length"}
}

func (m *MeanLength) Name() string { return m.name }

func (m *MeanLength) Observe(ep *sim.Episode) {
	m.lengths = append(m.lengths, float64(ep.Steps))
}

func (m *MeanLength) Value() float64 {
	if len(m.lengths) == 0 {
		return 0
	}
	return stat.Mean(m.lengths, nil)
}

func (m *MeanLength) Reset() { m.lengths = m.lengths[:0] }

// OutcomeRate is the fraction of episodes ending with one reason.
type OutcomeRate struct {
	name    string
	reason  arena.Reason
	matches int
	total   int
}

func NewOutcomeRate(reason arena.Reason) *OutcomeRate {
	return &OutcomeRate{name: reason.String() + "_rate", reason: reason}
}

func (o *OutcomeRate) Name() string { return o.name }

func (o *OutcomeRate) Observe(ep *sim.Episode) {
	o.total++
	if ep.Outcome.Reason == o.reason {
		o.matches++
	}
}

func (o *OutcomeRate) Value() float64 {
	if o.total == 0 {
		return 0
	}
	return float64(o.matches) / float64(o.total)
}

func (o *OutcomeRate) Reset() {
	o.matches = 0
	o.total = 0
}

// Default is the metric set the CLI attaches to every run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewMeanReturn(),
		NewReturnStdDev(),
		NewProgress(),
		NewMeanLength(),
		NewOutcomeRate(arena.Success),
		NewOutcomeRate(arena.Failure),
		NewOutcomeRate(arena.Timeout),
	}
}
