package lns

import (
	"context"
	"time"

	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/gnames/lnsdesign/pkg/lifecycle"
)

// Status is the outcome of one subproblem.
type Status string

const (
	// StatusUpdatedDesign means the solver published an improvement and
	// returned before using its whole budget.
	StatusUpdatedDesign Status = "updated_design"
	// StatusCompleted means the subproblem was searched exhaustively.
	StatusCompleted Status = "completed"
	// StatusTimeout means the budget elapsed before the search finished.
	StatusTimeout Status = "timeout"
)

// SubProblem is a restricted design problem handed to a Solver.
type SubProblem struct {
	// Candidates are legal choices of relaxed collections only.
	Candidates *design.Candidates
	// CostModel evaluates designs.
	CostModel lifecycle.CostModel
	// Relaxed is the design with relaxed collections undecided.
	Relaxed *design.Design
	// BestCost is the cost of the caller's incumbent.
	BestCost float64
	// Budget is the soft deadline of the solver. Unbounded means no limit.
	Budget time.Duration
	// Incumbent is the process-wide best design the solver prunes against
	// and publishes to.
	Incumbent *Incumbent
	// WorkerID identifies the caller in logs.
	WorkerID string
}

// Result is what a Solver found for a SubProblem.
type Result struct {
	Status Status
	// BestCost is the best cost seen by the solver. It is not lower than
	// SubProblem.BestCost unless the solver found a better design.
	BestCost float64
	// BestDesign is the design with BestCost, nil if none was found.
	BestDesign *design.Design
	// UsedTime is the time the solver consumed.
	UsedTime time.Duration
}

// Solver searches one subproblem. It blocks for at most about the budget.
type Solver interface {
	Solve(ctx context.Context, sp SubProblem) (Result, error)
}
