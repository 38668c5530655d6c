// Package lns implements large-neighborhood search over physical database
// designs. A Coordinator repeatedly relaxes a random subset of collections,
// hands the restricted subproblem to a Solver under a time budget and
// adapts its relaxation size and budget until it stops improving or runs
// out of time.
package lns

import (
	"math"
	"time"

	"github.com/gnames/lnsdesign/pkg/config"
)

const (
	// ExhaustiveSearchBar is the largest number of collections that is
	// searched by the solver in one call, without sampling.
	ExhaustiveSearchBar = 4

	// Unbounded is a time budget without a limit. It is also used as
	// infinite stall time.
	Unbounded time.Duration = math.MaxInt64

	// subBudgetUnit is the sub-budget increase per 0.1 of relax ratio
	// step.
	subBudgetUnit = 30 * time.Second
)

// Params are the settings of one coordinator.
type Params struct {
	// Timeout is the global solver-time budget.
	Timeout time.Duration
	// PatientTime is the longest stall before the search converges.
	PatientTime time.Duration
	// InitSubBudget is the time budget of the first subproblem.
	InitSubBudget time.Duration
	// InitRelaxRatio is the relax ratio of the first iteration.
	InitRelaxRatio float64
	// RelaxRatioStep is added to the ratio after every finished subproblem.
	RelaxRatioStep float64
	// MaxRelaxRatio caps the relax ratio.
	MaxRelaxRatio float64
}

// NewParams converts the multi-search configuration section to Params.
func NewParams(cfg config.MultiSearchConfig) Params {
	return Params{
		Timeout:        time.Duration(cfg.TimeForLNSSearch) * time.Second,
		PatientTime:    time.Duration(cfg.PatientTime) * time.Second,
		InitSubBudget:  seconds(cfg.InitBBSearchTime),
		InitRelaxRatio: cfg.InitRelaxRatio,
		RelaxRatioStep: cfg.RelaxRatioStep,
		MaxRelaxRatio:  cfg.MaxRelaxRatio,
	}
}

// subBudgetIncrement is the schedule of sub-budget growth, proportional
// to the relax ratio step.
func (p Params) subBudgetIncrement() time.Duration {
	return time.Duration(p.RelaxRatioStep / 0.1 * float64(subBudgetUnit))
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
