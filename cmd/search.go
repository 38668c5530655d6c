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
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/internal/iodb"
	"github.com/gnames/lnsdesign/internal/iofs"
	"github.com/gnames/lnsdesign/internal/iometrics"
	"github.com/gnames/lnsdesign/internal/ioorchestrator"
	"github.com/gnames/lnsdesign/internal/ioschema"
	"github.com/gnames/lnsdesign/internal/iostore"
	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// searchOutput is the YAML document printed or written by search.
type searchOutput struct {
	RunID      string         `yaml:"run_id"`
	BestCost   float64        `yaml:"best_cost"`
	Workers    int            `yaml:"workers"`
	Iterations int            `yaml:"iterations"`
	Elapsed    string         `yaml:"elapsed"`
	Design     *design.Design `yaml:"design"`
}

// getSearchCmd returns the search command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getSearchCmd() *cobra.Command {
	var (
		workloadPath string
		jobs         int
		timeLimit    int
		patience     int
		seed         uint64
		outputPath   string
		save         bool
		metricsAddr  string
		interim      bool
	)

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search the best physical design for a workload",
		Long: `Search runs several large-neighborhood search workers over a
workload file and prints the best design found as YAML.

The workload file is a SQLite database with tables:
  collections(name, doc_count)
  candidates(collection, shard_key, index_keys)
  operations(collection, kind, fields, weight)

Every worker starts from the greedy design (the cheapest candidate of
every collection) and stops when it cannot improve its design within
the patience window or when its time budget is over.

Examples:
  # Search with 8 workers for at most 10 minutes
  lnsdesign search -w workload.sqlite -j 8 --time 600

  # Write the design to a file and store the run in PostgreSQL
  lnsdesign search -w workload.sqlite -o design.yaml --save

  # Reproducible run with Prometheus metrics
  lnsdesign search -w workload.sqlite --seed 42 --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var searchOpts []config.Option
			flags := cmd.Flags()
			if flags.Changed("workload") {
				searchOpts = append(searchOpts, config.OptWorkloadPath(workloadPath))
			}
			if flags.Changed("jobs") {
				searchOpts = append(searchOpts, config.OptJobsNumber(jobs))
			}
			if flags.Changed("time") {
				searchOpts = append(searchOpts, config.OptTimeForLNSSearch(timeLimit))
			}
			if flags.Changed("patience") {
				searchOpts = append(searchOpts, config.OptPatientTime(patience))
			}
			if flags.Changed("seed") {
				searchOpts = append(searchOpts, config.OptRandomSeed(seed))
			}
			if flags.Changed("output") {
				searchOpts = append(searchOpts, config.OptOutputPath(outputPath))
			}
			if flags.Changed("save") {
				searchOpts = append(searchOpts, config.OptSaveRun(save))
			}
			if flags.Changed("metrics-addr") {
				searchOpts = append(searchOpts, config.OptMetricsAddr(metricsAddr))
			}
			if flags.Changed("interim") {
				searchOpts = append(searchOpts, config.OptInterimReports(interim))
			}
			cfg.Update(searchOpts)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			err := runSearch(ctx, cfg, os.Stdout, true)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	searchCmd.Flags().StringVarP(
		&workloadPath, "workload", "w", "",
		"SQLite workload file (required)",
	)
	searchCmd.Flags().IntVarP(
		&jobs, "jobs", "j", 0,
		"number of search workers (default: number of CPUs)",
	)
	searchCmd.Flags().IntVar(
		&timeLimit, "time", 0,
		"time budget of every worker in seconds",
	)
	searchCmd.Flags().IntVar(
		&patience, "patience", 0,
		"stop a worker after so many seconds without improvement",
	)
	searchCmd.Flags().Uint64Var(
		&seed, "seed", 0,
		"random seed for reproducible relaxations (0 = random)",
	)
	searchCmd.Flags().StringVarP(
		&outputPath, "output", "o", "",
		"write the design YAML to a file instead of STDOUT",
	)
	searchCmd.Flags().BoolVar(
		&save, "save", false,
		"store the run in the PostgreSQL design store",
	)
	searchCmd.Flags().StringVar(
		&metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address, e.g. :9090",
	)
	searchCmd.Flags().BoolVar(
		&interim, "interim", false,
		"end subproblems as soon as they improve the design",
	)
	_ = searchCmd.MarkFlagRequired("workload")

	return searchCmd
}

func runSearch(
	ctx context.Context,
	cfg *config.Config,
	out io.Writer,
	withBar bool,
) error {
	if err := iofs.CheckFile(cfg.WorkloadPath); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := iometrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				gn.Warn("Cannot serve metrics on <em>%s</em>: %v", cfg.MetricsAddr, err)
			}
		}()
	}

	gn.Info(
		"Searching designs with <em>%d</em> workers, time budget <em>%s</em>",
		cfg.JobsNumber,
		time.Duration(cfg.MultiSearch.TimeForLNSSearch)*time.Second,
	)

	o := ioorchestrator.New(cfg,
		ioorchestrator.OptMetrics(m),
		ioorchestrator.OptProgressBar(withBar),
	)
	sum, err := o.Run(ctx)
	if err != nil {
		return err
	}

	gn.Info(
		"Best design cost <em>%s</em> after <em>%s</em> subproblems in %s",
		humanize.CommafWithDigits(sum.BestCost, 2),
		humanize.Comma(int64(sum.Iterations)),
		sum.Elapsed.Round(time.Millisecond),
	)

	if err = writeDesign(cfg, sum, out); err != nil {
		return err
	}

	if cfg.SaveRun {
		return saveRun(ctx, cfg, sum)
	}
	return nil
}

func writeDesign(
	cfg *config.Config,
	sum *ioorchestrator.Summary,
	out io.Writer,
) error {
	doc := searchOutput{
		RunID:      sum.RunID,
		BestCost:   sum.BestCost,
		Workers:    sum.Workers,
		Iterations: sum.Iterations,
		Elapsed:    sum.Elapsed.Round(time.Millisecond).String(),
		Design:     sum.BestDesign,
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	if cfg.OutputPath == "" {
		_, err = out.Write(data)
		return err
	}

	if err = os.WriteFile(cfg.OutputPath, data, 0644); err != nil {
		return iofs.WriteFileError(cfg.OutputPath, err)
	}
	gn.Info("Design is written to <em>%s</em>", cfg.OutputPath)
	return nil
}

func saveRun(
	ctx context.Context,
	cfg *config.Config,
	sum *ioorchestrator.Summary,
) error {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer op.Close()

	if err := ioschema.NewManager(op).Migrate(ctx); err != nil {
		return err
	}

	if err := iostore.New(op).SaveRun(ctx, sum.RunSummary()); err != nil {
		return err
	}

	gn.Info("Search run <em>%s</em> is saved to <em>%s</em>",
		sum.RunID, cfg.Database.Database)
	return nil
}
