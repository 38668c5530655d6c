// Package ioworker provides the design search worker driven by the
// message transport.
package ioworker

import (
	"context"
	"hash/fnv"
	"log/slog"

	"github.com/gnames/lnsdesign/internal/iobbsearch"
	"github.com/gnames/lnsdesign/internal/iocost"
	"github.com/gnames/lnsdesign/internal/ioworkload"
	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/gnames/lnsdesign/pkg/lifecycle"
	"github.com/gnames/lnsdesign/pkg/lns"
	"github.com/gnames/lnsdesign/pkg/message"
	"github.com/gnames/lnsdesign/pkg/workload"
)

// DoneFunc receives the final search state of a worker.
type DoneFunc func(workerID string, st lns.SearchState)

// Designer loads a workload, computes a greedy design and improves it
// with large-neighborhood search.
type Designer struct {
	incumbent *lns.Incumbent
	base      *slog.Logger
	log       *slog.Logger
	onDone    DoneFunc

	workerID string
	cache    *iocost.Cache
	wl       *workload.Workload
	model    *iocost.Model
	initial  *design.Design
	cost     float64
}

var _ lifecycle.Worker = (*Designer)(nil)

// NewDesigner creates a worker that shares incumbent with other workers
// of the process. onDone can be nil.
func NewDesigner(inc *lns.Incumbent, log *slog.Logger, onDone DoneFunc) *Designer {
	if log == nil {
		log = slog.Default()
	}
	return &Designer{incumbent: inc, base: log, log: log, onDone: onDone}
}

// Register adds the designer to a registry under the default benchmark
// name.
func Register(
	reg *lifecycle.Registry,
	inc *lns.Incumbent,
	log *slog.Logger,
	onDone DoneFunc,
) {
	reg.Register(config.DefaultBenchmark, func() lifecycle.Worker {
		return NewDesigner(inc, log, onDone)
	})
}

// Initialize opens the cost cache of the worker. Without a home
// directory the cache is kept in memory. A repeated INIT drops the cache
// of the previous one.
func (d *Designer) Initialize(
	_ context.Context,
	cfg *config.Config,
	_ message.Channel,
	msg message.Init,
) error {
	d.closeCache()
	d.wl, d.model, d.initial = nil, nil, nil

	d.workerID = msg.WorkerID
	d.log = d.base.With("worker", d.workerID)

	var dir string
	if cfg.HomeDir != "" {
		dir = config.CostCacheDir(cfg.HomeDir, d.workerID)
	}
	cache, err := iocost.NewCache(dir, d.log)
	if err != nil {
		return err
	}
	if err = cache.Open(); err != nil {
		return err
	}
	d.cache = cache
	return nil
}

// StartLoading reads the workload and publishes the greedy design.
func (d *Designer) StartLoading(
	ctx context.Context,
	cfg *config.Config,
	_ message.Channel,
	_ message.Load,
) error {
	wl, err := ioworkload.Load(ctx, cfg.WorkloadPath)
	if err != nil {
		d.closeCache()
		return err
	}
	d.wl = wl
	d.model = iocost.New(wl, d.cache, d.log)
	d.initial, d.cost = d.model.GreedyDesign()

	if d.incumbent.PublishIfBetter(d.cost, d.initial) {
		d.log.Debug("Published greedy design", "cost", d.cost)
	}
	return nil
}

// StartExecution runs the search and removes the cost cache when it is
// over.
func (d *Designer) StartExecution(
	ctx context.Context,
	cfg *config.Config,
	ch message.Channel,
	_ message.Execute,
) error {
	if d.model == nil {
		return NotLoadedError(d.workerID)
	}
	defer d.closeCache()

	initial, cost := d.initial, d.cost
	if c, shared := d.incumbent.Snapshot(); shared != nil && c < cost &&
		shared.Len() == initial.Len() {
		initial, cost = shared, c
	}

	prob := lns.Problem{
		Candidates:    d.wl.Candidates,
		CostModel:     d.model,
		InitialDesign: initial,
		InitialCost:   cost,
	}
	deps := lns.Deps{
		Solver:    iobbsearch.New(cfg.MultiSearch.InterimReports, d.log),
		Channel:   ch,
		Incumbent: d.incumbent,
		WorkerID:  d.workerID,
		Logger:    d.log,
		Rand:      lns.NewRand(workerSeed(cfg.RandomSeed, d.workerID)),
	}

	coord := lns.NewCoordinator(lns.NewParams(cfg.MultiSearch), prob, deps)
	st, err := coord.Run(ctx)

	hits, misses := d.model.CacheStats()
	d.log.Debug("Cost cache usage", "hits", hits, "misses", misses)

	if d.onDone != nil {
		d.onDone(d.workerID, st)
	}
	return err
}

// closeCache closes and removes the cost cache if there is one.
func (d *Designer) closeCache() {
	if d.cache == nil {
		return
	}
	if err := d.cache.Cleanup(); err != nil {
		d.log.Warn("Cannot clean cost cache", "error", err)
	}
	d.cache = nil
}

// workerSeed derives a stream of every worker from the run seed. Zero
// stays zero, meaning a random seed.
func workerSeed(seed uint64, workerID string) uint64 {
	if seed == 0 {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(workerID))
	res := seed ^ h.Sum64()
	if res == 0 {
		res = seed
	}
	return res
}
