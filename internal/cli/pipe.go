package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/events"
)

const maxRecordSize = 1 << 20

func newPipeCmd(a *app) *cobra.Command {
	var (
		file string
		tee  bool
	)

	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Route newline-delimited JSON log records",
		Long: `Read newline-delimited JSON log records from stdin (or --file) and route
each one. Recognised fields: severity|level, message|msg, exception|error|err.
All other fields are attached as context. Lines that are not JSON objects are
skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open %s: %w", file, err)
				}
				defer f.Close()
				in = f
			}

			var out io.Writer
			if tee {
				out = cmd.OutOrStdout()
			}
			return a.pipe(cmd.Context(), in, out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read records from a file instead of stdin")
	cmd.Flags().BoolVar(&tee, "tee", false, "copy every input line to stdout")
	return cmd
}

func (a *app) pipe(ctx context.Context, in io.Reader, tee io.Writer) error {
	router := a.router()
	dispatcher := events.NewDispatcher()
	logwatch.Register(dispatcher, router)

	var routed, skipped int
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Bytes()
		if tee != nil {
			fmt.Fprintf(tee, "%s\n", line)
		}
		if len(line) == 0 {
			continue
		}

		event, err := parseRecord(line)
		if err != nil {
			skipped++
			a.log.Debug().Err(err).Int("line", lineNo).Msg("skipping record")
			continue
		}
		dispatcher.Dispatch(event)
		routed++
	}
	scanErr := scanner.Err()

	a.finish(ctx, router)
	a.log.Info().Int("routed", routed).Int("skipped", skipped).Msg("pipe finished")

	if scanErr != nil {
		return fmt.Errorf("read records: %w", scanErr)
	}
	return nil
}

// finish flushes and closes the router, logging rather than failing.
func (a *app) finish(ctx context.Context, router *logwatch.Router) {
	if ctx == nil {
		ctx = context.Background()
	}
	flushCtx, cancel := context.WithTimeout(ctx, a.cfg.Sentry.FlushTimeout)
	defer cancel()

	if err := router.Flush(flushCtx); err != nil {
		a.log.Warn().Err(err).Msg("flush monitoring client")
	}
	if err := router.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close monitoring client")
	}
}
