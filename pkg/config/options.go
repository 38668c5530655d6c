package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptTimeForLNSSearch sets the global search time budget in seconds.
func OptTimeForLNSSearch(i int) Option {
	return func(c *Config) {
		if isValidInt("MultiSearch.TimeForLNSSearch", i) {
			c.MultiSearch.TimeForLNSSearch = i
		}
	}
}

// OptPatientTime sets how many seconds a worker searches without
// improvement before it gives up.
func OptPatientTime(i int) Option {
	return func(c *Config) {
		if isValidInt("MultiSearch.PatientTime", i) {
			c.MultiSearch.PatientTime = i
		}
	}
}

// OptInitBBSearchTime sets the time budget of the first subproblem in
// seconds.
func OptInitBBSearchTime(f float64) Option {
	return func(c *Config) {
		if isValidFloat("MultiSearch.InitBBSearchTime", f) {
			c.MultiSearch.InitBBSearchTime = f
		}
	}
}

// OptInitRelaxRatio sets the fraction of collections relaxed in the
// first iteration. Valid range is (0, 1].
func OptInitRelaxRatio(f float64) Option {
	return func(c *Config) {
		if isValidRatio("MultiSearch.InitRelaxRatio", f) {
			c.MultiSearch.InitRelaxRatio = f
		}
	}
}

// OptRelaxRatioStep sets the relax ratio increment. Valid range is (0, 1].
func OptRelaxRatioStep(f float64) Option {
	return func(c *Config) {
		if isValidRatio("MultiSearch.RelaxRatioStep", f) {
			c.MultiSearch.RelaxRatioStep = f
		}
	}
}

// OptMaxRelaxRatio sets the upper bound of the relax ratio.
// Valid range is (0, 1].
func OptMaxRelaxRatio(f float64) Option {
	return func(c *Config) {
		if isValidRatio("MultiSearch.MaxRelaxRatio", f) {
			c.MultiSearch.MaxRelaxRatio = f
		}
	}
}

// OptInterimReports sets whether the solver reports the first improvement
// of a subproblem right away.
func OptInterimReports(b bool) Option {
	return func(c *Config) {
		c.MultiSearch.InterimReports = b
	}
}

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptBenchmark sets the name of the worker created on INIT.
func OptBenchmark(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidString("Benchmark", s) {
			c.Benchmark = s
		}
	}
}

// OptJobsNumber sets the number of concurrent search workers.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptWorkloadPath sets the SQLite workload file.
// Runtime-only field - not in ToOptions().
func OptWorkloadPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Workload Path", s) {
			c.WorkloadPath = s
		}
	}
}

// OptOutputPath sets the YAML file for the best design.
// Runtime-only field - not in ToOptions().
func OptOutputPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if s != "" {
			c.OutputPath = s
		}
	}
}

// OptSaveRun sets whether the search summary is stored in the database.
// Runtime-only field - not in ToOptions().
func OptSaveRun(b bool) Option {
	return func(c *Config) {
		c.SaveRun = b
	}
}

// OptMetricsAddr sets the listen address of the metrics endpoint.
// Runtime-only field - not in ToOptions().
func OptMetricsAddr(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if s != "" {
			c.MetricsAddr = s
		}
	}
}

// OptRandomSeed sets the seed of relaxation sampling.
// Zero keeps sampling random.
// Runtime-only field - not in ToOptions().
func OptRandomSeed(i uint64) Option {
	return func(c *Config) {
		c.RandomSeed = i
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
