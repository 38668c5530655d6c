// Package schema provides GORM models of the design store.
package schema

import (
	"time"
)

// SearchRun is a finished multi-worker design search.
type SearchRun struct {
	// ID is the run identifier, a UUID.
	ID string `gorm:"type:uuid;primaryKey"`

	// StartedAt is when the first worker was initialized.
	StartedAt time.Time `gorm:"not null"`

	// FinishedAt is when the last worker completed.
	FinishedAt time.Time `gorm:"not null"`

	// Workers is the number of search workers of the run.
	Workers int `gorm:"not null"`

	// Iterations is the number of subproblems solved by all workers.
	Iterations int `gorm:"not null"`

	// BestCost is the cost of the stored design.
	BestCost float64 `gorm:"not null"`
}

// TableName overrides the default GORM table name.
func (SearchRun) TableName() string {
	return "search_runs"
}

// Design is the chosen physical design of one collection in a run.
type Design struct {
	// ID is UUID v5 of the run ID and the collection name.
	ID string `gorm:"type:uuid;primaryKey"`

	// RunID refers to SearchRun.
	RunID string `gorm:"type:uuid;not null;index"`

	Collection string `gorm:"type:varchar(255);not null"`

	// ShardKey is empty for unsharded collections.
	ShardKey string `gorm:"type:varchar(255);not null;default:''"`

	// IndexKeys are comma separated index keys, leading key first.
	IndexKeys string `gorm:"type:text;not null;default:''"`
}

// TableName overrides the default GORM table name.
func (Design) TableName() string {
	return "designs"
}
