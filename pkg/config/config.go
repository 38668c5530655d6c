// Package config provides configuration management for lnsdesign.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - MultiSearch: time_for_lnssearch, patient_time, init_bbsearch_time,
//     init_relax_ratio, relax_ratio_step, max_relax_ratio, interim_reports
//   - Database: host, port, user, password, database, ssl_mode
//   - Log: level, format, destination
//   - General: benchmark, jobs_number
//
// Runtime-only fields (CLI flags only):
//   - WorkloadPath, OutputPath, SaveRun, MetricsAddr, RandomSeed
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use LNSDESIGN_ prefix with underscores for nesting:
//
//	LNSDESIGN_MULTI_SEARCH_PATIENT_TIME=600
//	LNSDESIGN_DATABASE_HOST=localhost
//	LNSDESIGN_LOG_LEVEL=info
//	LNSDESIGN_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete lnsdesign configuration.
type Config struct {
	// MultiSearch contains the parameters of the large-neighborhood search
	// that every worker runs.
	MultiSearch MultiSearchConfig `mapstructure:"multi-search" yaml:"multi-search" json:"multi_search"`

	// Database contains PostgreSQL connection settings of the design store.
	Database DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`

	Log LogConfig `mapstructure:"log" yaml:"log" json:"log"`

	// Benchmark is the name of the worker implementation the transport
	// creates on INIT.
	Benchmark string `mapstructure:"benchmark" yaml:"benchmark" json:"benchmark"`

	// JobsNumber is the number of concurrent search workers.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number" json:"jobs_number"`

	// WorkloadPath is the SQLite file with collections, candidate designs
	// and the workload operations.
	WorkloadPath string `json:"workload_path"`

	// OutputPath is a YAML file for the best design. Empty means the
	// design is only printed.
	OutputPath string `json:"output_path"`

	// SaveRun is true if the search summary has to be stored in the
	// design database.
	SaveRun bool `json:"save_run"`

	// MetricsAddr is the address for Prometheus metrics endpoint.
	// Empty disables the endpoint.
	MetricsAddr string `json:"metrics_addr"`

	// RandomSeed makes relaxation sampling reproducible when not zero.
	// Every worker derives its own stream from the seed.
	RandomSeed uint64 `json:"random_seed"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `json:"home_dir"`
}

// MultiSearchConfig contains settings of the large-neighborhood search.
// Time values are in seconds.
type MultiSearchConfig struct {
	// TimeForLNSSearch is the global time budget of one worker.
	TimeForLNSSearch int `mapstructure:"time_for_lnssearch" yaml:"time_for_lnssearch" json:"time_for_lnssearch"`

	// PatientTime is how long a worker keeps searching without finding
	// a better design.
	PatientTime int `mapstructure:"patient_time" yaml:"patient_time" json:"patient_time"`

	// InitBBSearchTime is the time budget of the first subproblem.
	// Ignored in exhaustive mode.
	InitBBSearchTime float64 `mapstructure:"init_bbsearch_time" yaml:"init_bbsearch_time" json:"init_bbsearch_time"`

	// InitRelaxRatio is the fraction of collections relaxed in the first
	// iteration. Ignored in exhaustive mode.
	InitRelaxRatio float64 `mapstructure:"init_relax_ratio" yaml:"init_relax_ratio" json:"init_relax_ratio"`

	// RelaxRatioStep is added to the relax ratio after every finished
	// subproblem.
	RelaxRatioStep float64 `mapstructure:"relax_ratio_step" yaml:"relax_ratio_step" json:"relax_ratio_step"`

	// MaxRelaxRatio caps the relax ratio.
	MaxRelaxRatio float64 `mapstructure:"max_relax_ratio" yaml:"max_relax_ratio" json:"max_relax_ratio"`

	// InterimReports makes the subproblem solver return as soon as it
	// publishes an improvement instead of using the rest of its budget.
	InterimReports bool `mapstructure:"interim_reports" yaml:"interim_reports" json:"interim_reports"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host" json:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port" json:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user" json:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password" json:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database" json:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode" json:"ssl_mode"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"      json:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"       json:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination" json:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		MultiSearch: MultiSearchConfig{
			TimeForLNSSearch: 3600,
			PatientTime:      600,
			InitBBSearchTime: 10,
			InitRelaxRatio:   0.25,
			RelaxRatioStep:   0.1,
			MaxRelaxRatio:    0.5,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "lnsdesign",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		Benchmark:  DefaultBenchmark,
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
