package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "lnsdesign"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "lnsdesign"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "lnsdesign", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "lnsdesign", "config.yaml"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}

	assert.Equal(t,
		filepath.Join(tempHome, ".cache", "lnsdesign", "costs", "w1"),
		config.CostCacheDir(tempHome, "w1"),
	)
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		ms := cfg.MultiSearch
		assert.Equal(t, 3600, ms.TimeForLNSSearch)
		assert.Equal(t, 600, ms.PatientTime)
		assert.Equal(t, 10.0, ms.InitBBSearchTime)
		assert.Equal(t, 0.25, ms.InitRelaxRatio)
		assert.Equal(t, 0.1, ms.RelaxRatioStep)
		assert.Equal(t, 0.5, ms.MaxRelaxRatio)
		assert.False(t, ms.InterimReports)

		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "lnsdesign", cfg.Database.Database)
		assert.Equal(t, "disable", cfg.Database.SSLMode)

		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "file", cfg.Log.Destination)

		assert.Equal(t, "designer", cfg.Benchmark)
		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	})
}

func TestOptionRatios(t *testing.T) {
	tests := []struct {
		name     string
		opt      func(float64) config.Option
		get      func(*config.Config) float64
		input    float64
		expected float64
	}{
		{
			name:     "sets init ratio",
			opt:      config.OptInitRelaxRatio,
			get:      func(c *config.Config) float64 { return c.MultiSearch.InitRelaxRatio },
			input:    0.3,
			expected: 0.3,
		},
		{
			name:     "ignores init ratio above one",
			opt:      config.OptInitRelaxRatio,
			get:      func(c *config.Config) float64 { return c.MultiSearch.InitRelaxRatio },
			input:    1.5,
			expected: 0.25,
		},
		{
			name:     "accepts max ratio of one",
			opt:      config.OptMaxRelaxRatio,
			get:      func(c *config.Config) float64 { return c.MultiSearch.MaxRelaxRatio },
			input:    1,
			expected: 1,
		},
		{
			name:     "ignores zero step",
			opt:      config.OptRelaxRatioStep,
			get:      func(c *config.Config) float64 { return c.MultiSearch.RelaxRatioStep },
			input:    0,
			expected: 0.1,
		},
		{
			name:     "ignores negative step",
			opt:      config.OptRelaxRatioStep,
			get:      func(c *config.Config) float64 { return c.MultiSearch.RelaxRatioStep },
			input:    -0.1,
			expected: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{tt.opt(tt.input)})
			assert.Equal(t, tt.expected, tt.get(cfg))
		})
	}
}

func TestOptionTimes(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptTimeForLNSSearch(120),
		config.OptPatientTime(60),
		config.OptInitBBSearchTime(2.5),
	})
	assert.Equal(t, 120, cfg.MultiSearch.TimeForLNSSearch)
	assert.Equal(t, 60, cfg.MultiSearch.PatientTime)
	assert.Equal(t, 2.5, cfg.MultiSearch.InitBBSearchTime)

	cfg.Update([]config.Option{
		config.OptTimeForLNSSearch(0),
		config.OptPatientTime(-1),
		config.OptInitBBSearchTime(0),
	})
	assert.Equal(t, 120, cfg.MultiSearch.TimeForLNSSearch)
	assert.Equal(t, 60, cfg.MultiSearch.PatientTime)
	assert.Equal(t, 2.5, cfg.MultiSearch.InitBBSearchTime)
}

func TestOptionDatabaseHost(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sets valid host",
			input:    "db.example.com",
			expected: "db.example.com",
		},
		{
			name:     "trims whitespace",
			input:    "  db.example.com  ",
			expected: "db.example.com",
		},
		{
			name:     "ignores empty string",
			input:    "",
			expected: "localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseHost(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.Host)
		})
	}
}

func TestOptionLogDestination(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"stdout", "stdout", "stdout"},
		{"stderr upper case", "STDERR", "stderr"},
		{"ignores unknown", "syslog", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptLogDestination(tt.input)})
			assert.Equal(t, tt.expected, cfg.Log.Destination)
		})
	}
}

func TestOptionBenchmark(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptBenchmark("  Designer ")})
	assert.Equal(t, "designer", cfg.Benchmark)

	cfg.Update([]config.Option{config.OptBenchmark("")})
	assert.Equal(t, "designer", cfg.Benchmark)
}

func TestToOptions(t *testing.T) {
	src := config.New()
	src.Update([]config.Option{
		config.OptPatientTime(42),
		config.OptMaxRelaxRatio(0.8),
		config.OptInterimReports(true),
		config.OptJobsNumber(3),
		config.OptLogFormat("tint"),
		config.OptWorkloadPath("/tmp/w.sqlite"),
		config.OptHomeDir("/home/user"),
	})

	dst := config.New()
	dst.Update(src.ToOptions())

	assert.Equal(t, src.MultiSearch, dst.MultiSearch)
	assert.Equal(t, src.Database, dst.Database)
	assert.Equal(t, src.Log, dst.Log)
	assert.Equal(t, 3, dst.JobsNumber)

	// runtime-only fields are not carried over
	assert.Empty(t, dst.WorkloadPath)
	assert.Empty(t, dst.HomeDir)
}
