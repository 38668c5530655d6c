/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/internal/iofs"
	"github.com/gnames/lnsdesign/internal/iologger"
	app "github.com/gnames/lnsdesign/pkg"
	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// getRootCmd returns the root command with all subcommands.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "lnsdesign",
		Short:   "lnsdesign searches physical database designs for a workload",
		Long: `lnsdesign finds a shard key and an index for every collection of a
database so that the estimated cost of a workload is as low as possible.

Several workers run large-neighborhood search in parallel. Every worker
relaxes a random part of the best known design and solves the relaxed
part with time-bounded branch-and-bound. Workers share the best design.

Commands:
  search   run a multi-worker design search for a workload file
  worker   run one search worker over stdin/stdout
  migrate  create or update the PostgreSQL design store

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (LNSDESIGN_*)
  3. Config file (~/.config/lnsdesign/config.yaml)
  4. Built-in defaults`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "lnsdesign version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for lnsdesign")

	rootCmd.AddCommand(getSearchCmd())
	rootCmd.AddCommand(getWorkerCmd())
	rootCmd.AddCommand(getMigrateCmd())

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// the worker protocol owns stdout
	if cmd.Name() == "worker" && cfg.Log.Destination == "stdout" {
		cfg.Update([]config.Option{config.OptLogDestination("stderr")})
	}

	// Reconfigure logging with user's settings and proper log file location
	if err = iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded", "config_file", config.ConfigFilePath(homeDir))

	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	versionFlag(cmd)
	return cmd.Help()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := getRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions() - i.e., persistent
	// configuration that can be stored in config.yaml.
	v.SetEnvPrefix("LNSDESIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Search configuration
	v.BindEnv("multi-search.time_for_lnssearch", "MULTI_SEARCH_TIME_FOR_LNSSEARCH")
	v.BindEnv("multi-search.patient_time", "MULTI_SEARCH_PATIENT_TIME")
	v.BindEnv("multi-search.init_bbsearch_time", "MULTI_SEARCH_INIT_BBSEARCH_TIME")
	v.BindEnv("multi-search.init_relax_ratio", "MULTI_SEARCH_INIT_RELAX_RATIO")
	v.BindEnv("multi-search.relax_ratio_step", "MULTI_SEARCH_RELAX_RATIO_STEP")
	v.BindEnv("multi-search.max_relax_ratio", "MULTI_SEARCH_MAX_RELAX_RATIO")
	v.BindEnv("multi-search.interim_reports", "MULTI_SEARCH_INTERIM_REPORTS")

	// Database configuration
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.database", "DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	// Log configuration
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("log.destination", "LOG_DESTINATION")

	// General configuration
	v.BindEnv("benchmark", "BENCHMARK")
	v.BindEnv("jobs_number", "JOBS_NUMBER")

	v.AutomaticEnv()
}
