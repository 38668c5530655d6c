package lifecycle

import (
	"github.com/gnames/lnsdesign/pkg/design"
)

// CostModel estimates the cost of a physical design for a workload.
// Cost is additive over collections; undecided collections add nothing.
// Lower cost is strictly better.
type CostModel interface {
	// Cost returns the total cost of decided collections of the design.
	Cost(d *design.Design) float64

	// CollectionCost returns the cost of one collection under a choice.
	CollectionCost(collection string, c design.Choice) float64
}
