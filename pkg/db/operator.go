// Package db defines the connection contract of the design store.
package db

import (
	"context"

	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator manages the connection to the design-store database and
// exposes the pgxpool.Pool to components that run their own SQL
// (SchemaManager, DesignStore).
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool. It is nil before Connect.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)
}
