// Package iobbsearch solves design subproblems with depth-first
// branch-and-bound.
package iobbsearch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/gnames/lnsdesign/pkg/lns"
)

// Solver is a depth-first branch-and-bound search over relaxed
// collections. Collections are assigned in name order, cheapest candidate
// first. A branch is pruned when its cost plus the sum of the cheapest
// candidates of the remaining collections cannot beat the best known cost.
type Solver struct {
	interim bool
	log     *slog.Logger
	now     func() time.Time
}

var _ lns.Solver = (*Solver)(nil)

// New creates a Solver. With interim reports the solver returns
// lns.StatusUpdatedDesign right after its first improvement.
func New(interimReports bool, log *slog.Logger) *Solver {
	if log == nil {
		log = slog.Default()
	}
	return &Solver{interim: interimReports, log: log, now: time.Now}
}

type option struct {
	choice design.Choice
	cost   float64
}

type search struct {
	sp       lns.SubProblem
	names    []string
	options  [][]option
	boundSum []float64 // boundSum[i] is the cheapest cost of names[i:]
	current  *design.Design
	deadline time.Time
	ctx      context.Context
	now      func() time.Time
	interim  bool

	bestCost   float64
	bestDesign *design.Design
	nodes      int
	stopped    lns.Status
}

// Solve searches the relaxed collections of the subproblem within its
// budget. Context cancellation stops the search like a timeout.
func (s *Solver) Solve(ctx context.Context, sp lns.SubProblem) (lns.Result, error) {
	start := s.now()

	srch, err := s.prepare(ctx, sp)
	if err != nil {
		return lns.Result{}, err
	}
	if sp.Budget != lns.Unbounded {
		srch.deadline = start.Add(sp.Budget)
	}

	fixed := sp.CostModel.Cost(sp.Relaxed)
	srch.dfs(0, fixed)

	status := srch.stopped
	if status == "" {
		status = lns.StatusCompleted
	}
	res := lns.Result{
		Status:     status,
		BestCost:   srch.bestCost,
		BestDesign: srch.bestDesign,
		UsedTime:   s.now().Sub(start),
	}

	s.log.Debug("Subproblem finished",
		"worker", sp.WorkerID,
		"relaxed", len(srch.names),
		"nodes", srch.nodes,
		"status", res.Status,
		"best_cost", res.BestCost,
		"improved", res.BestDesign != nil,
	)
	return res, nil
}

func (s *Solver) prepare(
	ctx context.Context,
	sp lns.SubProblem,
) (*search, error) {
	names := sp.Relaxed.Undecided()
	slices.Sort(names)

	res := &search{
		sp:       sp,
		names:    names,
		options:  make([][]option, len(names)),
		boundSum: make([]float64, len(names)+1),
		current:  sp.Relaxed.Copy(),
		ctx:      ctx,
		now:      s.now,
		interim:  s.interim,
		bestCost: sp.BestCost,
	}

	for i, name := range names {
		choices := sp.Candidates.For(name)
		if len(choices) == 0 {
			return nil, fmt.Errorf("no candidates for relaxed collection %s", name)
		}
		opts := make([]option, len(choices))
		for j, c := range choices {
			opts[j] = option{choice: c, cost: sp.CostModel.CollectionCost(name, c)}
		}
		slices.SortStableFunc(opts, func(a, b option) int {
			switch {
			case a.cost < b.cost:
				return -1
			case a.cost > b.cost:
				return 1
			}
			return 0
		})
		res.options[i] = opts
	}

	for i := len(names) - 1; i >= 0; i-- {
		res.boundSum[i] = res.boundSum[i+1] + res.options[i][0].cost
	}
	return res, nil
}

// bound is the cost a branch has to beat.
func (s *search) bound() float64 {
	if s.sp.Incumbent == nil {
		return s.bestCost
	}
	return math.Min(s.bestCost, s.sp.Incumbent.Cost())
}

func (s *search) expired() bool {
	if s.ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && s.now().After(s.deadline)
}

func (s *search) dfs(i int, partial float64) {
	if s.stopped != "" {
		return
	}
	s.nodes++
	if s.expired() {
		s.stopped = lns.StatusTimeout
		return
	}
	if !(partial+s.boundSum[i] < s.bound()) {
		return
	}

	if i == len(s.names) {
		s.improve(partial)
		return
	}

	name := s.names[i]
	for _, opt := range s.options[i] {
		s.current.Set(name, opt.choice)
		s.dfs(i+1, partial+opt.cost)
		if s.stopped != "" {
			break
		}
	}
	s.current.Reset(name)
}

func (s *search) improve(cost float64) {
	s.bestCost = cost
	s.bestDesign = s.current.Copy()
	if s.sp.Incumbent != nil {
		s.sp.Incumbent.PublishIfBetter(cost, s.bestDesign)
	}
	if s.interim {
		s.stopped = lns.StatusUpdatedDesign
	}
}
