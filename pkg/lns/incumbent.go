package lns

import (
	"math"
	"sync"

	"github.com/gnames/lnsdesign/pkg/design"
)

// Incumbent is the best design known to all workers of a process.
// It is safe for concurrent use.
type Incumbent struct {
	mu      sync.Mutex
	cost    float64
	design  *design.Design
	updates int
}

// NewIncumbent creates an empty incumbent with infinite cost.
func NewIncumbent() *Incumbent {
	return &Incumbent{cost: math.Inf(1)}
}

// PublishIfBetter replaces the incumbent with a clone of the design if the
// cost is strictly lower. It reports whether the incumbent changed.
func (i *Incumbent) PublishIfBetter(cost float64, d *design.Design) bool {
	if d == nil {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if !(cost < i.cost) {
		return false
	}
	i.cost = cost
	i.design = d.Copy()
	i.updates++
	return true
}

// Cost returns the incumbent cost.
func (i *Incumbent) Cost() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cost
}

// Snapshot returns the cost and a clone of the incumbent design. The
// design is nil if nothing was published.
func (i *Incumbent) Snapshot() (float64, *design.Design) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.design == nil {
		return i.cost, nil
	}
	return i.cost, i.design.Copy()
}

// Updates returns how many times the incumbent improved.
func (i *Incumbent) Updates() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.updates
}
