// Package iometrics exposes search progress as Prometheus metrics.
package iometrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gnames/lnsdesign/pkg/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lnsdesign"

// Metrics keeps collectors of one search run in a private registry.
type Metrics struct {
	reg *prometheus.Registry

	iterations *prometheus.CounterVec
	stall      *prometheus.GaugeVec
	subBudget  *prometheus.GaugeVec
	relaxed    *prometheus.GaugeVec
	completed  prometheus.Counter
	bestCost   prometheus.Gauge
}

// New creates metrics registered in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		iterations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "iterations_total",
			Help:      "Subproblems started by a worker",
		}, []string{"worker"}),
		stall: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "stall_seconds",
			Help:      "Solver time since the last improvement of a worker",
		}, []string{"worker"}),
		subBudget: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "sub_budget_seconds",
			Help:      "Time budget of the current subproblem of a worker",
		}, []string{"worker"}),
		relaxed: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "relaxed_collections",
			Help:      "Collections relaxed in the current subproblem of a worker",
		}, []string{"worker"}),
		completed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "workers_completed_total",
			Help:      "Workers that finished their search",
		}),
		bestCost: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "best_cost",
			Help:      "Cost of the best design found so far",
		}),
	}
}

// Observe updates metrics from an upstream message.
func (m *Metrics) Observe(msg message.Message) {
	switch v := msg.(type) {
	case message.SearchProgress:
		m.iterations.WithLabelValues(v.WorkerID).Inc()
		m.stall.WithLabelValues(v.WorkerID).Set(v.StallTime.Seconds())
		m.subBudget.WithLabelValues(v.WorkerID).Set(v.SubBudget.Seconds())
		m.relaxed.WithLabelValues(v.WorkerID).Set(float64(len(v.RelaxedNames)))
	case message.ExecuteCompleted:
		m.completed.Inc()
	}
}

// SetBestCost records the cost of the shared incumbent.
func (m *Metrics) SetBestCost(cost float64) {
	m.bestCost.Set(cost)
}

// Registry returns the registry with all collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the metrics in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			slog.Warn("Cannot stop metrics server", "error", err)
		}
	}()

	slog.Info("Serving metrics", "addr", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
