package lns_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/gnames/lnsdesign/pkg/errcode"
	"github.com/gnames/lnsdesign/pkg/lns"
	"github.com/gnames/lnsdesign/pkg/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	status lns.Status
	cost   float64
	used   time.Duration
	err    error
}

// scriptedSolver returns prepared results and records what it was asked.
type scriptedSolver struct {
	steps []step
	calls []lns.SubProblem
}

func (s *scriptedSolver) Solve(
	_ context.Context,
	sp lns.SubProblem,
) (lns.Result, error) {
	s.calls = append(s.calls, sp)
	i := len(s.calls) - 1
	if i >= len(s.steps) {
		return lns.Result{}, errors.New("script is exhausted")
	}
	st := s.steps[i]
	if st.err != nil {
		return lns.Result{}, st.err
	}
	return lns.Result{
		Status:     st.status,
		BestCost:   st.cost,
		BestDesign: sp.Relaxed.Copy(),
		UsedTime:   st.used,
	}, nil
}

func repeat(n int, s step) []step {
	res := make([]step, n)
	for i := range res {
		res[i] = s
	}
	return res
}

func problem(n int) lns.Problem {
	cols := names(n)
	cs := design.NewCandidates()
	for _, v := range cols {
		cs.Add(v, design.Choice{}, design.Choice{ShardKey: "id"})
	}
	return lns.Problem{
		Candidates:    cs,
		InitialDesign: decided(n),
		InitialCost:   100,
	}
}

func params() lns.Params {
	return lns.Params{
		Timeout:        time.Hour,
		PatientTime:    time.Hour,
		InitSubBudget:  5 * time.Second,
		InitRelaxRatio: 0.2,
		RelaxRatioStep: 0.1,
		MaxRelaxRatio:  0.5,
	}
}

type run struct {
	state    lns.SearchState
	err      error
	solver   *scriptedSolver
	progress []message.SearchProgress
	done     []message.ExecuteCompleted
}

func runSearch(
	t *testing.T,
	p lns.Params,
	prob lns.Problem,
	steps []step,
) run {
	t.Helper()
	worker, orchestrator := message.NewPair(256)
	solver := &scriptedSolver{steps: steps}
	c := lns.NewCoordinator(p, prob, lns.Deps{
		Solver:    solver,
		Channel:   worker,
		Incumbent: lns.NewIncumbent(),
		WorkerID:  "w1",
		Rand:      lns.NewRand(3),
	})

	state, err := c.Run(context.Background())
	res := run{state: state, err: err, solver: solver}

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		msg, err := orchestrator.Receive(ctx)
		cancel()
		if err != nil {
			break
		}
		switch m := msg.(type) {
		case message.SearchProgress:
			res.progress = append(res.progress, m)
		case message.ExecuteCompleted:
			res.done = append(res.done, m)
		default:
			t.Fatalf("unexpected message %s", msg.Kind())
		}
	}
	return res
}

func relaxedSizes(ps []message.SearchProgress) []int {
	res := make([]int, len(ps))
	for i, v := range ps {
		res[i] = len(v.RelaxedNames)
	}
	return res
}

func stallTimes(ps []message.SearchProgress) []time.Duration {
	res := make([]time.Duration, len(ps))
	for i, v := range ps {
		res[i] = v.StallTime
	}
	return res
}

func TestRelaxRatioIsClamped(t *testing.T) {
	p := params()
	p.Timeout = 10 * time.Second
	noGain := step{status: lns.StatusTimeout, cost: 100, used: time.Second}

	r := runSearch(t, p, problem(10), repeat(10, noGain))
	require.NoError(t, r.err)

	assert.Equal(t, lns.StateBudgetExhausted, r.state.State)
	assert.Equal(t, 0.5, r.state.RelaxRatio)
	assert.Equal(t,
		[]int{2, 3, 4, 5, 5, 5, 5, 5, 5, 5},
		relaxedSizes(r.progress),
	)
	for _, v := range r.progress {
		assert.LessOrEqual(t, float64(len(v.RelaxedNames))/10, p.MaxRelaxRatio)
	}
}

func TestInitRatioAboveMax(t *testing.T) {
	p := params()
	p.InitRelaxRatio = 0.9
	p.Timeout = time.Second
	r := runSearch(t, p, problem(10),
		[]step{{status: lns.StatusCompleted, cost: 100, used: time.Second}})
	require.NoError(t, r.err)
	assert.Equal(t, []int{5}, relaxedSizes(r.progress))
}

func TestSubBudgetSchedule(t *testing.T) {
	p := params()
	p.Timeout = 3 * time.Second
	noGain := step{status: lns.StatusCompleted, cost: 100, used: time.Second}

	r := runSearch(t, p, problem(10), repeat(3, noGain))
	require.NoError(t, r.err)
	require.Len(t, r.solver.calls, 3)

	want := []time.Duration{5 * time.Second, 35 * time.Second, 65 * time.Second}
	for i, v := range r.solver.calls {
		assert.Equal(t, want[i], v.Budget)
		assert.Equal(t, want[i], r.progress[i].SubBudget)
	}
}

func TestExhaustiveMode(t *testing.T) {
	tests := []struct {
		msg  string
		cost float64
	}{
		{"no improvement", 100},
		{"improvement", 50},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			r := runSearch(t, params(), problem(3), []step{
				{status: lns.StatusCompleted, cost: v.cost, used: time.Second},
			})
			require.NoError(t, r.err)

			assert.Len(t, r.solver.calls, 1)
			assert.Equal(t, lns.StateConverged, r.state.State)
			assert.True(t, r.state.Exhaustive)
			assert.Equal(t, lns.Unbounded, r.state.StallTime)
			assert.Equal(t, 1.0, r.state.RelaxRatio)
			assert.Equal(t, lns.Unbounded, r.solver.calls[0].Budget)
			assert.Equal(t, 3, r.solver.calls[0].Candidates.Len())
			assert.Len(t, r.solver.calls[0].Relaxed.Undecided(), 3)
			assert.Equal(t, v.cost, r.state.BestCost)
		})
	}
}

func TestExhaustiveBar(t *testing.T) {
	c := lns.NewCoordinator(params(), problem(lns.ExhaustiveSearchBar), lns.Deps{})
	assert.True(t, c.State().Exhaustive)

	c = lns.NewCoordinator(params(), problem(lns.ExhaustiveSearchBar+1), lns.Deps{})
	st := c.State()
	assert.False(t, st.Exhaustive)
	assert.Equal(t, 0.2, st.RelaxRatio)
	assert.Equal(t, 5*time.Second, st.SubBudget)
	assert.Equal(t, time.Hour, st.Remaining)
	assert.Equal(t, lns.StateSampling, st.State)
}

func TestStallTimeResetsOnlyOnImprovement(t *testing.T) {
	p := params()
	p.Timeout = 40 * time.Second
	sec10 := 10 * time.Second

	r := runSearch(t, p, problem(10), []step{
		{status: lns.StatusCompleted, cost: 90, used: sec10},
		{status: lns.StatusCompleted, cost: 95, used: sec10},
		{status: lns.StatusTimeout, cost: 80, used: sec10},
		{status: lns.StatusTimeout, cost: 80, used: sec10},
	})
	require.NoError(t, r.err)

	assert.Equal(t,
		[]time.Duration{0, 0, sec10, 0},
		stallTimes(r.progress),
	)
	assert.Equal(t, sec10, r.state.StallTime)
	assert.Equal(t, 80.0, r.state.BestCost)
	assert.Equal(t, lns.StateBudgetExhausted, r.state.State)
}

func TestSolverGetsLocalBestCost(t *testing.T) {
	p := params()
	p.Timeout = 3 * time.Second

	r := runSearch(t, p, problem(10), []step{
		{status: lns.StatusCompleted, cost: 70, used: time.Second},
		{status: lns.StatusCompleted, cost: 90, used: time.Second},
		{status: lns.StatusCompleted, cost: 60, used: time.Second},
	})
	require.NoError(t, r.err)
	require.Len(t, r.solver.calls, 3)

	assert.Equal(t, 100.0, r.solver.calls[0].BestCost)
	assert.Equal(t, 70.0, r.solver.calls[1].BestCost)
	assert.Equal(t, 70.0, r.solver.calls[2].BestCost)
	assert.Equal(t, 60.0, r.state.BestCost)
	assert.NotNil(t, r.solver.calls[0].Incumbent)
	assert.Equal(t, "w1", r.solver.calls[0].WorkerID)
}

func TestBudgetAccounting(t *testing.T) {
	p := params()
	p.Timeout = 30 * time.Second

	r := runSearch(t, p, problem(10), []step{
		{status: lns.StatusTimeout, cost: 100, used: 7 * time.Second},
		{status: lns.StatusTimeout, cost: 100, used: 11 * time.Second},
		{status: lns.StatusTimeout, cost: 100, used: 13 * time.Second},
	})
	require.NoError(t, r.err)

	assert.Len(t, r.solver.calls, 3)
	assert.Equal(t, -time.Second, r.state.Remaining)
	assert.Equal(t, 31*time.Second, r.state.UsedTime)
	assert.Equal(t, lns.StateBudgetExhausted, r.state.State)
}

func TestUpdatedDesignKeepsSchedule(t *testing.T) {
	p := params()
	p.PatientTime = time.Second
	p.Timeout = time.Minute

	steps := []step{
		{status: lns.StatusUpdatedDesign, cost: 90, used: 2 * time.Second},
		{status: lns.StatusUpdatedDesign, cost: 95, used: 2 * time.Second},
		{status: lns.StatusUpdatedDesign, cost: 80, used: 2 * time.Second},
		{status: lns.StatusUpdatedDesign, cost: 70, used: 2 * time.Second},
		{status: lns.StatusUpdatedDesign, cost: 75, used: 2 * time.Second},
		{status: lns.StatusCompleted, cost: 70, used: time.Second},
	}
	r := runSearch(t, p, problem(10), steps)
	require.NoError(t, r.err)
	require.Len(t, r.progress, 6)

	for i, v := range r.progress {
		assert.Len(t, v.RelaxedNames, 2, i)
		assert.Equal(t, 5*time.Second, v.SubBudget, i)
		assert.Equal(t, time.Duration(0), v.StallTime, i)
	}
	assert.Equal(t, 0.2, r.state.RelaxRatio)
	assert.Equal(t, 5*time.Second, r.state.SubBudget)
	assert.Equal(t, 70.0, r.state.BestCost)
	assert.Equal(t, 11*time.Second, r.state.UsedTime)
	assert.Equal(t, time.Minute, r.state.Remaining)
	assert.Equal(t, lns.StateConverged, r.state.State)
}

func TestScenarioConverges(t *testing.T) {
	p := lns.Params{
		Timeout:        120 * time.Second,
		PatientTime:    60 * time.Second,
		InitSubBudget:  10 * time.Second,
		InitRelaxRatio: 0.2,
		RelaxRatioStep: 0.1,
		MaxRelaxRatio:  0.5,
	}
	sec20 := 20 * time.Second
	steps := []step{
		{status: lns.StatusCompleted, cost: 10, used: sec20},
		{status: lns.StatusCompleted, cost: 8, used: sec20},
		{status: lns.StatusCompleted, cost: 8, used: sec20},
		{status: lns.StatusCompleted, cost: 8, used: sec20},
		{status: lns.StatusCompleted, cost: 8, used: sec20},
		{status: lns.StatusCompleted, cost: 8, used: sec20},
	}

	r := runSearch(t, p, problem(6), steps)
	require.NoError(t, r.err)

	assert.Equal(t,
		[]time.Duration{0, 0, 0, sec20, 2 * sec20},
		stallTimes(r.progress),
	)
	assert.Equal(t, []int{1, 2, 2, 3, 3}, relaxedSizes(r.progress))
	assert.Len(t, r.solver.calls, 5)
	assert.Equal(t, 8.0, r.state.BestCost)
	assert.Equal(t, 3*sec20, r.state.StallTime)
	assert.Equal(t, lns.StateConverged, r.state.State)
	assert.Equal(t, 40*time.Second, r.state.Remaining)
}

func TestScenarioExhaustsBudget(t *testing.T) {
	p := lns.Params{
		Timeout:        120 * time.Second,
		PatientTime:    time.Hour,
		InitSubBudget:  10 * time.Second,
		InitRelaxRatio: 0.2,
		RelaxRatioStep: 0.1,
		MaxRelaxRatio:  0.5,
	}
	sec20 := 20 * time.Second
	steps := []step{{status: lns.StatusCompleted, cost: 10, used: sec20}}
	steps = append(steps, repeat(6, step{
		status: lns.StatusCompleted, cost: 8, used: sec20,
	})...)

	r := runSearch(t, p, problem(6), steps)
	require.NoError(t, r.err)

	assert.Len(t, r.solver.calls, 6)
	assert.Equal(t, time.Duration(0), r.state.Remaining)
	assert.Equal(t, 120*time.Second, r.state.UsedTime)
	assert.Equal(t, lns.StateBudgetExhausted, r.state.State)
	require.Len(t, r.done, 1)
	assert.Equal(t, "w1", r.done[0].WorkerID)
}

func TestSolverFailure(t *testing.T) {
	boom := errors.New("boom")
	r := runSearch(t, params(), problem(10), []step{
		{status: lns.StatusCompleted, cost: 90, used: time.Second},
		{err: boom},
	})
	require.Error(t, r.err)

	var gnErr *gn.Error
	require.True(t, errors.As(r.err, &gnErr))
	assert.Equal(t, errcode.SearchSolverFailureError, gnErr.Code)
	assert.ErrorIs(t, gnErr.Err, boom)

	assert.Empty(t, r.done, "no completion after failure")
	assert.Equal(t, 90.0, r.state.BestCost)
}

func TestNoCollections(t *testing.T) {
	prob := lns.Problem{
		Candidates:    design.NewCandidates(),
		InitialDesign: design.New(),
		InitialCost:   0,
	}
	r := runSearch(t, params(), prob, nil)
	require.NoError(t, r.err)

	assert.Empty(t, r.solver.calls)
	assert.Empty(t, r.progress)
	assert.Len(t, r.done, 1)
	assert.Equal(t, lns.StateConverged, r.state.State)
}

func TestRunCanceled(t *testing.T) {
	c := lns.NewCoordinator(params(), problem(10), lns.Deps{
		Solver:    &scriptedSolver{},
		Incumbent: lns.NewIncumbent(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgressSnapshot(t *testing.T) {
	p := params()
	p.Timeout = time.Second
	r := runSearch(t, p, problem(10), []step{
		{status: lns.StatusCompleted, cost: 100, used: time.Second},
	})
	require.NoError(t, r.err)
	require.Len(t, r.progress, 1)

	pr := r.progress[0]
	assert.Equal(t, "w1", pr.WorkerID)
	assert.Equal(t, time.Duration(0), pr.UsedTime)
	assert.ElementsMatch(t, pr.RelaxedNames, pr.Relaxed.Undecided())
	assert.ElementsMatch(t, pr.RelaxedNames, r.solver.calls[0].Candidates.Names())
}
