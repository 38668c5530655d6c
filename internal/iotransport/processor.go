// Package iotransport dispatches messages to search workers and carries
// messages over byte streams.
package iotransport

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/gnames/lnsdesign/pkg/lifecycle"
	"github.com/gnames/lnsdesign/pkg/message"
)

// Processor is the receive loop of one worker. On INIT it creates the
// worker registered for the configured benchmark and forwards LOAD and
// EXECUTE to it.
type Processor struct {
	registry *lifecycle.Registry
	log      *slog.Logger

	cfg    *config.Config
	worker lifecycle.Worker
}

// NewProcessor creates a processor that builds workers from registry.
func NewProcessor(registry *lifecycle.Registry, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{registry: registry, log: log}
}

// Run receives and dispatches messages until the channel closes, an
// unrecognized message arrives or a worker fails. Closing of the channel
// and unrecognized messages end the loop without an error. Other receive
// failures are returned as ChannelError, cancellation as the context error.
func (p *Processor) Run(ctx context.Context, ch message.Channel) error {
	for {
		msg, err := ch.Receive(ctx)
		if errors.Is(err, message.ErrClosed) {
			p.log.Debug("Channel closed, stopping transport")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ChannelError(err)
		}

		done, err := p.dispatch(ctx, ch, msg)
		if err != nil || done {
			return err
		}
	}
}

func (p *Processor) dispatch(
	ctx context.Context,
	ch message.Channel,
	msg message.Message,
) (bool, error) {
	switch m := msg.(type) {
	case message.Init:
		return false, p.init(ctx, ch, m)
	case message.Load:
		if p.worker == nil {
			return true, NoWorkerError(m.Kind())
		}
		return false, p.worker.StartLoading(ctx, p.cfg, ch, m)
	case message.Execute:
		if p.worker == nil {
			return true, NoWorkerError(m.Kind())
		}
		return false, p.worker.StartExecution(ctx, p.cfg, ch, m)
	case message.Stop, message.Empty:
		p.log.Debug("Ignoring message", "kind", m.Kind().String())
		return false, nil
	default:
		header := msg.Kind().String()
		if u, ok := msg.(message.Unrecognized); ok {
			header = u.Header
		}
		p.log.Warn("Unrecognized message, stopping transport", "header", header)
		return true, nil
	}
}

func (p *Processor) init(
	ctx context.Context,
	ch message.Channel,
	m message.Init,
) error {
	cfg := m.Config
	if cfg == nil {
		cfg = config.New()
	}

	worker, err := p.registry.New(cfg.Benchmark)
	if err != nil {
		return UnknownBenchmarkError(cfg.Benchmark, err)
	}

	p.log.Debug("Initializing worker",
		"benchmark", cfg.Benchmark,
		"worker", m.WorkerID,
	)
	if err = worker.Initialize(ctx, cfg, ch, m); err != nil {
		return err
	}
	p.cfg = cfg
	p.worker = worker
	return nil
}
