// Package iocost estimates the cost of a physical design for a workload.
package iocost

import (
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/gnames/gnuuid"
	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/gnames/lnsdesign/pkg/lifecycle"
	"github.com/gnames/lnsdesign/pkg/workload"
)

const (
	// ShardFanOut multiplies the cost of a query that cannot be routed to
	// one shard.
	ShardFanOut = 8.0

	// IndexMaintenance is the extra cost of a write per index key.
	IndexMaintenance = 0.1
)

// Model is an additive cost model. The cost of a design is the sum of
// the costs of its decided collections.
type Model struct {
	wl    *workload.Workload
	ops   map[string][]workload.Operation
	cache *Cache
	log   *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

var _ lifecycle.CostModel = (*Model)(nil)

// New creates a cost model for a workload. Cache can be nil. An open
// cache memoises collection costs. Nil log means slog.Default().
func New(wl *workload.Workload, cache *Cache, log *slog.Logger) *Model {
	if log == nil {
		log = slog.Default()
	}
	res := &Model{
		wl:    wl,
		ops:   make(map[string][]workload.Operation),
		cache: cache,
		log:   log,
	}
	for _, v := range wl.Operations {
		res.ops[v.Collection] = append(res.ops[v.Collection], v)
	}
	return res
}

// Cost returns the total cost of decided collections of a design.
func (m *Model) Cost(d *design.Design) float64 {
	var res float64
	for _, name := range d.Collections() {
		if c, ok := d.Get(name); ok {
			res += m.CollectionCost(name, c)
		}
	}
	return res
}

// CollectionCost returns the cost of the workload of one collection under
// a choice.
func (m *Model) CollectionCost(collection string, c design.Choice) float64 {
	if m.cache == nil || m.cache.db == nil {
		return m.compute(collection, c)
	}

	key := cacheKey(collection, c)
	cost, ok, err := m.cache.Get(key)
	if err != nil {
		m.log.Warn("Cannot read cost cache", "error", err)
	}
	if ok {
		m.hits.Add(1)
		return cost
	}

	m.misses.Add(1)
	cost = m.compute(collection, c)
	if err = m.cache.Set(key, cost); err != nil {
		m.log.Warn("Cannot write cost cache", "error", err)
	}
	return cost
}

// CacheStats returns numbers of cache hits and misses.
func (m *Model) CacheStats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

// GreedyDesign picks the cheapest candidate of every collection.
func (m *Model) GreedyDesign() (*design.Design, float64) {
	names := m.wl.Names()
	res := design.New(names...)
	var total float64
	for _, name := range names {
		var best design.Choice
		bestCost := -1.0
		for _, c := range m.wl.Candidates.For(name) {
			cost := m.CollectionCost(name, c)
			if bestCost < 0 || cost < bestCost {
				best, bestCost = c, cost
			}
		}
		if bestCost < 0 {
			continue
		}
		res.Set(name, best)
		total += bestCost
	}
	return res, total
}

func (m *Model) compute(collection string, c design.Choice) float64 {
	docs := float64(m.wl.Collections[collection].DocCount)

	var res float64
	for _, op := range m.ops[collection] {
		if op.Kind.IsWrite() {
			res += op.Weight * (1 + IndexMaintenance*float64(len(c.Index)))
			continue
		}

		cost := op.Weight * docs
		if len(c.Index) > 0 && slices.Contains(op.Fields, c.Index[0]) {
			cost = op.Weight
		}
		if c.ShardKey != "" && !slices.Contains(op.Fields, c.ShardKey) {
			cost *= ShardFanOut
		}
		res += cost
	}
	return res
}

func cacheKey(collection string, c design.Choice) string {
	return gnuuid.New(collection + "|" + c.String()).String()
}
