package iobbsearch_test

import (
	"context"
	"math"
	"testing"

	"github.com/gnames/lnsdesign/internal/iobbsearch"
	"github.com/gnames/lnsdesign/internal/iocost"
	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/gnames/lnsdesign/pkg/lns"
	"github.com/gnames/lnsdesign/pkg/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// optimum finds the cheapest design by enumerating every combination.
func optimum(w *workload.Workload, m *iocost.Model) float64 {
	var res float64
	for _, name := range w.Names() {
		best := math.Inf(1)
		for _, c := range w.Candidates.For(name) {
			best = math.Min(best, m.CollectionCost(name, c))
		}
		res += best
	}
	return res
}

func subProblem(w *workload.Workload, m *iocost.Model) lns.SubProblem {
	return lns.SubProblem{
		Candidates: w.Candidates,
		CostModel:  m,
		Relaxed:    design.New(w.Names()...),
		BestCost:   math.Inf(1),
		Budget:     lns.Unbounded,
		Incumbent:  lns.NewIncumbent(),
		WorkerID:   "w1",
	}
}

func TestSolveFindsOptimum(t *testing.T) {
	w := workload.Generate(6, 5)
	m := iocost.New(w, nil, nil)
	sp := subProblem(w, m)

	res, err := iobbsearch.New(false, nil).Solve(context.Background(), sp)
	require.NoError(t, err)

	assert.Equal(t, lns.StatusCompleted, res.Status)
	require.NotNil(t, res.BestDesign)
	assert.Empty(t, res.BestDesign.Undecided())
	assert.InDelta(t, optimum(w, m), res.BestCost, 1e-9)
	assert.InDelta(t, res.BestCost, m.Cost(res.BestDesign), 1e-9)
	assert.Equal(t, res.BestCost, sp.Incumbent.Cost(), "improvement is published")
}

func TestSolvePartialRelaxation(t *testing.T) {
	w := workload.Generate(5, 9)
	m := iocost.New(w, nil, nil)
	fixed := design.New(w.Names()...)
	for _, name := range w.Names() {
		fixed.Set(name, w.Candidates.For(name)[0])
	}
	start := m.Cost(fixed)

	relaxed := fixed.Copy()
	relaxed.Reset("coll_01")
	relaxed.Reset("coll_03")

	sp := subProblem(w, m)
	sp.Relaxed = relaxed
	sp.Candidates = w.Candidates.GetCandidates([]string{"coll_01", "coll_03"})
	sp.BestCost = start

	res, err := iobbsearch.New(false, nil).Solve(context.Background(), sp)
	require.NoError(t, err)
	assert.Equal(t, lns.StatusCompleted, res.Status)

	if res.BestDesign == nil {
		assert.Equal(t, start, res.BestCost)
		return
	}
	assert.Less(t, res.BestCost, start)
	for _, name := range []string{"coll_00", "coll_02", "coll_04"} {
		got, ok := res.BestDesign.Get(name)
		require.True(t, ok)
		want, _ := fixed.Get(name)
		assert.True(t, want.Equal(got), "fixed collections keep their choice")
	}
}

func TestSolveRespectsSharedIncumbent(t *testing.T) {
	w := workload.Generate(4, 2)
	m := iocost.New(w, nil, nil)
	sp := subProblem(w, m)
	sp.Incumbent.PublishIfBetter(optimum(w, m)-1e-6, design.New("other"))

	res, err := iobbsearch.New(false, nil).Solve(context.Background(), sp)
	require.NoError(t, err)

	assert.Equal(t, lns.StatusCompleted, res.Status)
	assert.Nil(t, res.BestDesign, "nothing beats the shared incumbent")
	assert.True(t, math.IsInf(res.BestCost, 1))
	assert.Equal(t, 1, sp.Incumbent.Updates())
}

func TestSolveInterimReports(t *testing.T) {
	w := workload.Generate(6, 5)
	m := iocost.New(w, nil, nil)
	sp := subProblem(w, m)

	res, err := iobbsearch.New(true, nil).Solve(context.Background(), sp)
	require.NoError(t, err)

	assert.Equal(t, lns.StatusUpdatedDesign, res.Status)
	require.NotNil(t, res.BestDesign)
	assert.Equal(t, res.BestCost, sp.Incumbent.Cost())
}

func TestSolveNothingRelaxed(t *testing.T) {
	w := workload.Generate(2, 1)
	m := iocost.New(w, nil, nil)
	d, cost := m.GreedyDesign()

	sp := subProblem(w, m)
	sp.Relaxed = d
	sp.Candidates = design.NewCandidates()
	sp.BestCost = cost

	res, err := iobbsearch.New(false, nil).Solve(context.Background(), sp)
	require.NoError(t, err)
	assert.Equal(t, lns.StatusCompleted, res.Status)
	assert.Nil(t, res.BestDesign)
	assert.Equal(t, cost, res.BestCost)
}

func TestSolveMissingCandidates(t *testing.T) {
	w := workload.Generate(2, 1)
	m := iocost.New(w, nil, nil)
	sp := subProblem(w, m)
	sp.Candidates = design.NewCandidates()

	_, err := iobbsearch.New(false, nil).Solve(context.Background(), sp)
	assert.Error(t, err)
}

func TestSolveCanceled(t *testing.T) {
	w := workload.Generate(3, 1)
	m := iocost.New(w, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := iobbsearch.New(false, nil).Solve(ctx, subProblem(w, m))
	require.NoError(t, err)
	assert.Equal(t, lns.StatusTimeout, res.Status)
	assert.Nil(t, res.BestDesign)
}
