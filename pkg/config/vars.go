package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "lnsdesign"

	// DefaultBenchmark is the worker that searches designs for a workload
	// stored in a SQLite file.
	DefaultBenchmark = "designer"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/lnsdesign by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/lnsdesign by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// CostCacheDir returns the directory of the cost memo cache of one worker.
func CostCacheDir(homeDir, workerID string) string {
	return filepath.Join(CacheDir(homeDir), "costs", workerID)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/lnsdesign/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/lnsdesign/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
