package lifecycle

import (
	"context"
	"time"

	"github.com/gnames/lnsdesign/pkg/design"
)

// SchemaManager defines the interface for the design-store schema
// management. It uses GORM AutoMigrate, so it is idempotent - safe to run
// multiple times.
type SchemaManager interface {
	// Migrate creates or updates the design-store tables.
	Migrate(ctx context.Context) error
}

// RunSummary describes a finished multi-worker search.
type RunSummary struct {
	// RunID identifies the search run.
	RunID string
	// StartedAt is when the orchestrator sent the first INIT.
	StartedAt time.Time
	// FinishedAt is when the last worker completed.
	FinishedAt time.Time
	// Workers is the number of search workers.
	Workers int
	// Iterations is the total number of subproblems of all workers.
	Iterations int
	// BestCost is the cost of the best design.
	BestCost float64
	// BestDesign is the best design found by any worker.
	BestDesign *design.Design
}

// DesignStore keeps results of search runs.
type DesignStore interface {
	// SaveRun stores the summary and its best design.
	SaveRun(ctx context.Context, s RunSummary) error
}
