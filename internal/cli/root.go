// Package cli implements the logwatch command: it feeds log records into a
// Router and reports through the configured backend.
package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/strongdm/ai-cxdb-logwatch/internal/config"
	"github.com/strongdm/ai-cxdb-logwatch/internal/logging"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

var (
	appVersion = "dev"
	appCommit  = "none"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit string) {
	appVersion = version
	appCommit = commit
}

// FactoryBuilder selects the client factory for a configuration.
type FactoryBuilder func(cfg *config.Config, log zerolog.Logger) logwatch.ClientFactory

// app holds state shared by the subcommands of one invocation.
type app struct {
	envFile    string
	cfg        *config.Config
	log        zerolog.Logger
	newFactory FactoryBuilder
}

// NewRootCmd builds the command tree using the real backends.
func NewRootCmd() *cobra.Command {
	return newRootCmd(BuildFactory)
}

func newRootCmd(newFactory FactoryBuilder) *cobra.Command {
	a := &app{newFactory: newFactory, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "logwatch",
		Short: "Forward log events to an error monitor",
		Long: `logwatch routes log events to an error-monitoring backend.

Events at or above the capture threshold are reported as captures; everything
below becomes a breadcrumb attached to the next capture. Reporting failures
never interrupt the logging path.

Configuration is read from LOGWATCH_ prefixed environment variables
(LOGWATCH_BACKEND, LOGWATCH_SENTRY__DSN, LOGWATCH_ROUTER__CAPTURE_THRESHOLD, ...).`,
		Version:       fmt.Sprintf("%s (commit %s)", appVersion, appCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "load environment variables from this file first")

	root.AddCommand(newPipeCmd(a), newSendCmd(a), newCheckCmd(a))
	return root
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// router builds a Router for the loaded configuration.
func (a *app) router() *logwatch.Router {
	return BuildRouter(a.cfg, a.newFactory(a.cfg, a.log))
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
