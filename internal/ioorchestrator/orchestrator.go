// Package ioorchestrator runs several design search workers in one
// process and collects their results.
package ioorchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/lnsdesign/internal/iometrics"
	"github.com/gnames/lnsdesign/internal/iotransport"
	"github.com/gnames/lnsdesign/internal/ioworker"
	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/gnames/lnsdesign/pkg/lifecycle"
	"github.com/gnames/lnsdesign/pkg/lns"
	"github.com/gnames/lnsdesign/pkg/message"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// channelCapacity buffers progress messages of one worker.
const channelCapacity = 256

// Summary is the result of a search run.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	BestCost   float64
	BestDesign *design.Design
	// Iterations is the number of subproblems solved by all workers.
	Iterations int
	Workers    int
	Elapsed    time.Duration
}

// RunSummary converts the summary for the design store.
func (s Summary) RunSummary() lifecycle.RunSummary {
	return lifecycle.RunSummary{
		RunID:      s.RunID,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Workers:    s.Workers,
		Iterations: s.Iterations,
		BestCost:   s.BestCost,
		BestDesign: s.BestDesign,
	}
}

// Option modifies an Orchestrator.
type Option func(*Orchestrator)

// OptMetrics feeds upstream messages to m.
func OptMetrics(m *iometrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// OptProgressBar enables or disables the terminal progress bar.
func OptProgressBar(b bool) Option {
	return func(o *Orchestrator) {
		o.withBar = b
	}
}

// OptLogger sets the logger of the orchestrator and its workers.
func OptLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// Orchestrator starts JobsNumber workers sharing one incumbent.
type Orchestrator struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *iometrics.Metrics
	withBar bool

	mu     sync.Mutex
	states map[string]lns.SearchState
	iters  int
	bar    *pb.ProgressBar
}

// New creates an orchestrator for the given configuration.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	res := &Orchestrator{
		cfg:     cfg,
		log:     slog.Default(),
		withBar: true,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Run performs one search run and returns the best design of all
// workers. It fails if any worker fails.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	jobs := max(o.cfg.JobsNumber, 1)
	runID := uuid.NewString()
	log := o.log.With("run_id", runID)
	start := time.Now()

	o.states = make(map[string]lns.SearchState, jobs)
	o.iters = 0

	inc := lns.NewIncumbent()
	reg := lifecycle.NewRegistry()
	ioworker.Register(reg, inc, log, o.done)

	log.Info("Starting design search run",
		"workers", jobs,
		"workload", o.cfg.WorkloadPath,
	)

	if o.withBar {
		o.bar = pb.Full.Start(jobs)
		o.bar.Set("prefix", "Searching designs ")
		o.bar.Set(pb.CleanOnFinish, true)
		defer o.bar.Finish()
	}

	g, gCtx := errgroup.WithContext(ctx)
	var collectors sync.WaitGroup
	ups := make([]message.Channel, jobs)

	for i := range jobs {
		up, down := message.NewPair(channelCapacity)
		ups[i] = up
		workerID := fmt.Sprintf("w%d", i+1)

		proc := iotransport.NewProcessor(reg, log)
		g.Go(func() error {
			return proc.Run(gCtx, down)
		})

		collectors.Add(1)
		g.Go(func() error {
			defer collectors.Done()
			if err := o.start(gCtx, up, workerID); err != nil {
				return err
			}
			return o.collect(gCtx, up, inc)
		})
	}

	g.Go(func() error {
		collectors.Wait()
		for _, v := range ups {
			v.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Design search run failed", "error", err)
		return nil, err
	}

	cost, best := inc.Snapshot()
	if best == nil {
		return nil, NoDesignError(runID)
	}
	if o.metrics != nil {
		o.metrics.SetBestCost(cost)
	}

	finish := time.Now()
	res := &Summary{
		RunID:      runID,
		StartedAt:  start,
		FinishedAt: finish,
		BestCost:   cost,
		BestDesign: best,
		Iterations: o.iterations(),
		Workers:    jobs,
		Elapsed:    finish.Sub(start),
	}
	log.Info("Design search run finished",
		"best_cost", res.BestCost,
		"iterations", humanize.Comma(int64(res.Iterations)),
		"elapsed", res.Elapsed.Round(time.Millisecond),
	)
	return res, nil
}

// start sends the messages that make a worker search.
func (o *Orchestrator) start(
	ctx context.Context,
	ch message.Channel,
	workerID string,
) error {
	msgs := []message.Message{
		message.Init{Config: o.cfg, WorkerID: workerID},
		message.Load{},
		message.Execute{},
	}
	for _, v := range msgs {
		if err := ch.Send(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// collect consumes upstream messages of one worker until it completes.
func (o *Orchestrator) collect(
	ctx context.Context,
	ch message.Channel,
	inc *lns.Incumbent,
) error {
	for {
		msg, err := ch.Receive(ctx)
		if err != nil {
			return err
		}
		if o.metrics != nil {
			o.metrics.Observe(msg)
			o.metrics.SetBestCost(inc.Cost())
		}

		switch m := msg.(type) {
		case message.SearchProgress:
			o.mu.Lock()
			o.iters++
			o.mu.Unlock()
			if o.bar != nil {
				o.bar.Set("suffix", fmt.Sprintf(" best cost: %.1f", inc.Cost()))
			}
		case message.ExecuteCompleted:
			o.log.Debug("Worker completed", "worker", m.WorkerID)
			if o.bar != nil {
				o.bar.Increment()
			}
			return nil
		}
	}
}

// done keeps the final state of a worker.
func (o *Orchestrator) done(workerID string, st lns.SearchState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states[workerID] = st
}

// iterations prefers the counts of finished workers over the number of
// progress messages, which can be dropped.
func (o *Orchestrator) iterations() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.states) == 0 {
		return o.iters
	}
	var res int
	for _, v := range o.states {
		res += v.Iterations
	}
	return res
}

// States returns final search states of the last run by worker id.
func (o *Orchestrator) States() map[string]lns.SearchState {
	o.mu.Lock()
	defer o.mu.Unlock()
	res := make(map[string]lns.SearchState, len(o.states))
	for k, v := range o.states {
		res[k] = v
	}
	return res
}
