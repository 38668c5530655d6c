// Package iotesting provides shared test utilities.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gnames/lnsdesign/internal/ioworkload"
	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/gnames/lnsdesign/pkg/workload"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "lnsdesign_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// Database settings can be changed with LNSDESIGN_DATABASE_* environment
// variables, the database name is always TestDatabaseName.
func GetTestConfig() *config.Config {
	cfg := config.New()

	var opts []config.Option
	if s := os.Getenv("LNSDESIGN_DATABASE_HOST"); s != "" {
		opts = append(opts, config.OptDatabaseHost(s))
	}
	if s := os.Getenv("LNSDESIGN_DATABASE_PORT"); s != "" {
		if port, err := strconv.Atoi(s); err == nil {
			opts = append(opts, config.OptDatabasePort(port))
		}
	}
	if s := os.Getenv("LNSDESIGN_DATABASE_USER"); s != "" {
		opts = append(opts, config.OptDatabaseUser(s))
	}
	if s := os.Getenv("LNSDESIGN_DATABASE_PASSWORD"); s != "" {
		opts = append(opts, config.OptDatabasePassword(s))
	}
	opts = append(opts, config.OptDatabaseDatabase(TestDatabaseName))
	cfg.Update(opts)

	return cfg
}

// GetTestDatabaseConfig returns only the database configuration for tests.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}

// WriteWorkload generates a workload and writes it to a temporary SQLite
// file. It returns the path to the file.
func WriteWorkload(t *testing.T, collections int, seed uint64) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "workload.sqlite")
	wl := workload.Generate(collections, seed)
	if err := ioworkload.Write(context.Background(), path, wl); err != nil {
		t.Fatalf("Failed to write workload: %v", err)
	}
	return path
}
