package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/sim"
)

// Summary aggregates results from several runs, e.g. an ensemble.
type Summary struct {
	Runs        int
	Episodes    int
	Steps       int
	MeanReturn  float64
	StdReturn   float64
	MinReturn   float64
	MaxReturn   float64
	SuccessRate float64
}

func Summarize(results []*sim.Result) Summary {
	var s Summary
	var returns []float64
	successes := 0

	for _, r := range results {
		if r == nil {
			continue
		}
		s.Runs++
		s.Steps += r.StepsTaken
		returns = append(returns, r.Returns()...)
		successes += r.Outcomes()[arena.Success]
	}

	s.Episodes = len(returns)
	if s.Episodes == 0 {
		return s
	}
	s.MeanReturn, s.StdReturn = stat.MeanStdDev(returns, nil)
	if s.Episodes < 2 {
		s.StdReturn = 0
	}
	s.MinReturn = floats.Min(returns)
	s.MaxReturn = floats.Max(returns)
	s.SuccessRate = float64(successes) / float64(s.Episodes)
	return s
}
