// Package iostore saves search results to the PostgreSQL design store.
package iostore

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gnames/gnuuid"
	"github.com/gnames/lnsdesign/pkg/db"
	"github.com/gnames/lnsdesign/pkg/lifecycle"
	"github.com/gnames/lnsdesign/pkg/schema"
	"github.com/jackc/pgx/v5"
)

type store struct {
	operator db.Operator
}

// New creates a DesignStore that uses a connected operator.
func New(op db.Operator) lifecycle.DesignStore {
	return &store{operator: op}
}

// Rows converts a run summary to design store rows. Undecided
// collections are skipped.
func Rows(s lifecycle.RunSummary) (schema.SearchRun, []schema.Design) {
	run := schema.SearchRun{
		ID:         s.RunID,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Workers:    s.Workers,
		Iterations: s.Iterations,
		BestCost:   s.BestCost,
	}

	var designs []schema.Design
	if s.BestDesign == nil {
		return run, designs
	}
	for _, name := range s.BestDesign.Collections() {
		c, ok := s.BestDesign.Get(name)
		if !ok {
			continue
		}
		designs = append(designs, schema.Design{
			ID:         gnuuid.New(s.RunID + "|" + name).String(),
			RunID:      s.RunID,
			Collection: name,
			ShardKey:   c.ShardKey,
			IndexKeys:  strings.Join(c.Index, ","),
		})
	}
	return run, designs
}

// SaveRun stores the run and its design in one transaction.
func (s *store) SaveRun(ctx context.Context, sum lifecycle.RunSummary) error {
	pool := s.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	run, designs := Rows(sum)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return SaveRunError(sum.RunID, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO search_runs
			(id, started_at, finished_at, workers, iterations, best_cost)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Workers,
		run.Iterations, run.BestCost,
	)
	if err != nil {
		return SaveRunError(sum.RunID, err)
	}

	rows := make([][]any, len(designs))
	for i, v := range designs {
		rows[i] = []any{v.ID, v.RunID, v.Collection, v.ShardKey, v.IndexKeys}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"designs"},
		[]string{"id", "run_id", "collection", "shard_key", "index_keys"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return SaveRunError(sum.RunID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return SaveRunError(sum.RunID, err)
	}

	slog.Info("Saved search run",
		"run_id", sum.RunID,
		"collections", len(designs),
		"best_cost", sum.BestCost,
	)
	return nil
}
