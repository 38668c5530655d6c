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
	"log/slog"
	"os"
	"os/signal"

	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/internal/iotransport"
	"github.com/gnames/lnsdesign/internal/ioworker"
	"github.com/gnames/lnsdesign/pkg/lifecycle"
	"github.com/gnames/lnsdesign/pkg/lns"
	"github.com/spf13/cobra"
)

// streamCapacity is the number of outgoing messages a worker queues
// before progress reports are dropped.
const streamCapacity = 1024

// getWorkerCmd returns the worker command.
func getWorkerCmd() *cobra.Command {
	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "Run one design search worker over STDIN/STDOUT",
		Long: `Worker reads messages from STDIN and writes messages to STDOUT, one
JSON object per line: {"header": "INIT", "data": {...}}.

Downstream messages: INIT, LOAD, EXECUTE, STOP, EMPTY.
Upstream messages: SEARCH_PROGRESS, EXECUTE_COMPLETED.

INIT carries the configuration and the worker id. The worker ends when
STDIN is closed or an unknown message arrives. Logs never go to STDOUT.

Example:
  lnsdesign worker < messages.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			err := runWorker(ctx, os.Stdin, os.Stdout)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return workerCmd
}

func runWorker(ctx context.Context, r io.Reader, w io.Writer) error {
	log := slog.Default()
	reg := lifecycle.NewRegistry()
	ioworker.Register(reg, lns.NewIncumbent(), log, nil)

	stream := iotransport.NewStream(r, w, streamCapacity, log)
	defer stream.Close()

	return iotransport.NewProcessor(reg, log).Run(ctx, stream)
}
