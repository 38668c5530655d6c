package iodb_test

import (
	"context"
	"testing"

	"github.com/gnames/lnsdesign/internal/iodb"
	"github.com/gnames/lnsdesign/internal/iotesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These are integration tests that require PostgreSQL. The database name
// is always forced to iotesting.TestDatabaseName. Skip them with
// go test -short.

func TestPgxOperatorConnect(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	op := iodb.NewPgxOperator()
	ctx := context.Background()

	err := op.Connect(ctx, iotesting.GetTestDatabaseConfig())
	require.NoError(t, err)
	defer op.Close()

	assert.NotNil(t, op.Pool())
	exists, err := op.TableExists(ctx, "nonexistent_table")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPgxOperatorConnectInvalidHost(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := iotesting.GetTestDatabaseConfig()
	cfg.Host = "nonexistent.invalid"

	op := iodb.NewPgxOperator()
	err := op.Connect(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, op.Pool())
}
