package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

func newSendCmd(a *app) *cobra.Command {
	var (
		severity string
		message  string
		fields   []string
		errText  string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Route a single log event",
		Example: `  logwatch send --severity error --message "payment failed" --field order=42
  logwatch send -s critical -m "worker crashed" --error "nil pointer dereference"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := logwatch.ParseSeverity(severity)
			if !ok {
				return fmt.Errorf("unknown severity %q", severity)
			}
			ctx, err := parseFields(fields)
			if err != nil {
				return err
			}
			if errText != "" {
				ctx[logwatch.ExceptionKey] = errors.New(errText)
			}

			router := a.router()
			router.Handle(logwatch.LogEvent{Severity: s, Message: message, Context: ctx})
			a.finish(cmd.Context(), router)

			a.log.Info().Str("severity", s.String()).Bool("capture", s.AtLeast(a.cfg.Router.Threshold())).Msg("event routed")
			return nil
		},
	}
	cmd.Flags().StringVarP(&severity, "severity", "s", "error", "event severity (debug..emergency)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "event message")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "context field as key=value (repeatable)")
	cmd.Flags().StringVar(&errText, "error", "", "report as an exception with this error text")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
