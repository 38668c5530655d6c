package lns

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/gnames/lnsdesign/pkg/lifecycle"
	"github.com/gnames/lnsdesign/pkg/message"
)

// State is a step of the coordinator state machine.
type State int

const (
	StateSampling State = iota
	StateSolving
	StateEvaluating
	StateConverged
	StateBudgetExhausted
)

func (s State) String() string {
	switch s {
	case StateSampling:
		return "SAMPLING"
	case StateSolving:
		return "SOLVING"
	case StateEvaluating:
		return "EVALUATING"
	case StateConverged:
		return "CONVERGED"
	case StateBudgetExhausted:
		return "BUDGET_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the coordinator stops in this state.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateBudgetExhausted
}

// Problem is the design problem of one coordinator.
type Problem struct {
	// Candidates are legal choices of all collections.
	Candidates *design.Candidates
	// CostModel evaluates designs.
	CostModel lifecycle.CostModel
	// InitialDesign is the starting incumbent. It is cloned, never
	// modified.
	InitialDesign *design.Design
	// InitialCost is the cost of InitialDesign.
	InitialCost float64
}

// Deps are collaborators of a coordinator.
type Deps struct {
	Solver Solver
	// Channel receives progress and completion messages. It can be nil.
	Channel message.Channel
	// Incumbent is shared by all coordinators of the process.
	Incumbent *Incumbent
	WorkerID  string
	Logger    *slog.Logger
	// Rand drives relaxation sampling. Nil means randomly seeded.
	Rand *rand.Rand
}

// SearchState is the adaptive state of a coordinator.
type SearchState struct {
	State      State
	Exhaustive bool
	RelaxRatio float64
	SubBudget  time.Duration
	UsedTime   time.Duration
	StallTime  time.Duration
	// Remaining is what is left of the global budget.
	Remaining  time.Duration
	BestCost   float64
	BestDesign *design.Design
	Iterations int
}

// Coordinator runs large-neighborhood search for one worker.
// It is not safe for concurrent use; run one coordinator per goroutine.
type Coordinator struct {
	params      Params
	problem     Problem
	deps        Deps
	collections []string
	relaxer     *Relaxer
	log         *slog.Logger
	st          SearchState

	// per-iteration working values
	relaxedNames  []string
	relaxedDesign *design.Design
	result        Result
}

// NewCoordinator prepares a coordinator. With ExhaustiveSearchBar or fewer
// collections it runs in exhaustive mode: every iteration relaxes all
// collections and the solver has no time limit.
func NewCoordinator(p Params, prob Problem, deps Deps) *Coordinator {
	collections := prob.Candidates.Names()
	if prob.InitialDesign != nil {
		collections = prob.InitialDesign.Collections()
	}
	initial := prob.InitialDesign
	if initial == nil {
		initial = design.New(collections...)
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("worker", deps.WorkerID)

	c := &Coordinator{
		params:      p,
		problem:     prob,
		deps:        deps,
		collections: collections,
		relaxer:     NewRelaxer(collections, deps.Rand),
		log:         log,
	}

	c.st = SearchState{
		State:      StateSampling,
		RelaxRatio: min(p.InitRelaxRatio, p.MaxRelaxRatio),
		SubBudget:  p.InitSubBudget,
		Remaining:  p.Timeout,
		BestCost:   prob.InitialCost,
		BestDesign: initial.Copy(),
	}
	if len(collections) <= ExhaustiveSearchBar {
		c.st.Exhaustive = true
		c.st.RelaxRatio = 1.0
		c.st.SubBudget = Unbounded
	}
	return c
}

// State returns a copy of the current search state.
func (c *Coordinator) State() SearchState {
	res := c.st
	res.BestDesign = c.st.BestDesign.Copy()
	return res
}

// Run iterates until the search converges or exhausts its budget, then
// sends EXECUTE_COMPLETED. A solver error stops the search and is returned
// without sending the completion message. The context is checked between
// iterations only.
func (c *Coordinator) Run(ctx context.Context) (SearchState, error) {
	c.log.Info("Starting design search",
		"collections", len(c.collections),
		"exhaustive", c.st.Exhaustive,
		"relax_ratio", c.st.RelaxRatio,
		"timeout", c.params.Timeout,
		"patience", c.params.PatientTime,
	)

	if len(c.collections) == 0 {
		c.log.Warn("No collections to search")
		c.st.State = StateConverged
		return c.finish(ctx)
	}

	for !c.st.State.Terminal() {
		if err := ctx.Err(); err != nil {
			return c.State(), err
		}
		if err := c.step(ctx); err != nil {
			return c.State(), err
		}
	}
	return c.finish(ctx)
}

// step runs one full iteration: sampling, solving and evaluating.
func (c *Coordinator) step(ctx context.Context) error {
	for {
		var err error
		switch c.st.State {
		case StateSampling:
			err = c.sample()
		case StateSolving:
			err = c.solve(ctx)
		case StateEvaluating:
			c.evaluate()
			return nil
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Coordinator) sample() error {
	names, relaxed, err := c.relaxer.Relax(c.st.BestDesign, c.st.RelaxRatio)
	if err != nil {
		return err
	}
	c.relaxedNames = names
	c.relaxedDesign = relaxed

	c.emitProgress()
	c.st.State = StateSolving
	return nil
}

func (c *Coordinator) solve(ctx context.Context) error {
	sp := SubProblem{
		Candidates: c.problem.Candidates.GetCandidates(c.relaxedNames),
		CostModel:  c.problem.CostModel,
		Relaxed:    c.relaxedDesign,
		BestCost:   c.st.BestCost,
		Budget:     c.st.SubBudget,
		Incumbent:  c.deps.Incumbent,
		WorkerID:   c.deps.WorkerID,
	}
	res, err := c.deps.Solver.Solve(ctx, sp)
	if err != nil {
		c.log.Error("Subproblem solver failed", "error", err)
		return SolverFailureError(c.deps.WorkerID, err)
	}
	c.result = res
	c.st.Iterations++
	c.st.UsedTime += res.UsedTime
	c.st.State = StateEvaluating
	return nil
}

func (c *Coordinator) evaluate() {
	res := c.result

	if res.Status == StatusUpdatedDesign {
		// an interim report does not advance the schedule
		c.adopt(res)
		c.st.State = StateSampling
		return
	}

	if c.adopt(res) {
		c.st.StallTime = 0
	} else {
		c.st.StallTime = addTime(c.st.StallTime, res.UsedTime)
	}

	if c.st.Exhaustive {
		// the whole space was covered, another attempt cannot help
		c.st.StallTime = Unbounded
	}

	if c.st.StallTime >= c.params.PatientTime {
		c.log.Info("No better design within patience window, stopping",
			"stall_time", c.st.StallTime,
			"best_cost", c.st.BestCost,
		)
		c.st.State = StateConverged
		return
	}

	c.st.RelaxRatio = math.Min(
		c.st.RelaxRatio+c.params.RelaxRatioStep,
		c.params.MaxRelaxRatio,
	)
	c.st.Remaining -= res.UsedTime
	c.st.SubBudget = addTime(c.st.SubBudget, c.params.subBudgetIncrement())

	if c.st.Remaining <= 0 {
		c.log.Info("Search time budget is exhausted, stopping",
			"used_time", c.st.UsedTime,
			"best_cost", c.st.BestCost,
		)
		c.st.State = StateBudgetExhausted
		return
	}
	c.st.State = StateSampling
}

// adopt takes a strictly better solver result as the local incumbent.
func (c *Coordinator) adopt(res Result) bool {
	if res.BestDesign == nil || !(res.BestCost < c.st.BestCost) {
		return false
	}
	c.log.Debug("Found better design",
		"old_cost", c.st.BestCost,
		"new_cost", res.BestCost,
		"status", res.Status,
	)
	c.st.BestCost = res.BestCost
	c.st.BestDesign = res.BestDesign.Copy()
	return true
}

func (c *Coordinator) emitProgress() {
	if c.deps.Channel == nil {
		return
	}
	msg := message.SearchProgress{
		RelaxedNames: c.relaxedNames,
		SubBudget:    c.st.SubBudget,
		Relaxed:      c.relaxedDesign.Copy(),
		UsedTime:     c.st.UsedTime,
		StallTime:    c.st.StallTime,
		WorkerID:     c.deps.WorkerID,
	}
	if !c.deps.Channel.TrySend(msg) {
		c.log.Debug("Progress message dropped")
	}
}

func (c *Coordinator) finish(ctx context.Context) (SearchState, error) {
	c.log.Info("Design search finished",
		"state", c.st.State.String(),
		"iterations", c.st.Iterations,
		"used_time", c.st.UsedTime,
		"best_cost", c.st.BestCost,
	)
	if c.deps.Channel != nil {
		msg := message.ExecuteCompleted{WorkerID: c.deps.WorkerID}
		if err := c.deps.Channel.Send(ctx, msg); err != nil {
			c.log.Warn("Cannot send completion message", "error", err)
		}
	}
	return c.State(), nil
}

// addTime adds durations saturating at Unbounded.
func addTime(a, b time.Duration) time.Duration {
	if b > 0 && a >= Unbounded-b {
		return Unbounded
	}
	return a + b
}
