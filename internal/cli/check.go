package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// errInactive reports that monitoring would stay disabled.
var errInactive = errors.New("monitoring inactive")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether monitoring would be active",
		Long: `Load the configuration and build the configured client once, the same
way the router does on its first event. Exits non-zero when monitoring would
stay disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			descriptor := strings.TrimSpace(a.cfg.Descriptor())
			fmt.Fprintf(out, "backend: %s\n", a.cfg.Backend)
			fmt.Fprintf(out, "capture threshold: %s\n", a.cfg.Router.Threshold())

			if descriptor == "" {
				fmt.Fprintln(out, "status: disabled (no descriptor configured)")
				return errInactive
			}

			client, err := a.newFactory(a.cfg, a.log)(descriptor)
			if err != nil {
				fmt.Fprintf(out, "status: disabled (%v)\n", err)
				return errInactive
			}
			if client == nil {
				fmt.Fprintln(out, "status: disabled (factory returned no client)")
				return errInactive
			}
			_ = client.Close()

			fmt.Fprintln(out, "status: active")
			return nil
		},
	}
}
