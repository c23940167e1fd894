// Package optim searches policy parameters for the best episode metric.
package optim

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/reachsim/internal/experiment"
)

var ErrNoCandidates = errors.New("optim: no parameter combination produced a result")

// BuildFunc returns a ready (Setup already called) experiment for params.
type BuildFunc func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Maximize selects the largest metric value instead of the smallest.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Candidate is one evaluated grid point.
type Candidate struct {
	Params map[string]float64
	Value  float64
}

// Search evaluates every grid point and returns the best one along with all
// evaluated candidates in grid order.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (Candidate, []Candidate, error) {
	var all []Candidate
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &all); err != nil {
		return Candidate{}, all, err
	}

	best := Candidate{Value: math.Inf(1)}
	if g.Maximize {
		best.Value = math.Inf(-1)
	}
	found := false
	for _, c := range all {
		if math.IsNaN(c.Value) {
			continue
		}
		if (g.Maximize && c.Value > best.Value) || (!g.Maximize && c.Value < best.Value) {
			best = c
			found = true
		}
	}
	if !found {
		return Candidate{}, all, ErrNoCandidates
	}
	return best, all, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build BuildFunc,
	metricName string,
	all *[]Candidate,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := build(current)
		if err != nil {
			return err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			val = math.NaN()
		}
		*all = append(*all, Candidate{Params: current, Value: val})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, metricName, all); err != nil {
			return err
		}
	}
	return nil
}
