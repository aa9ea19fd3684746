package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <command>",
		Short: "Run a command line through the platform shell",
		Long: `Run passes its argument to cmd /C on Windows and sh -c elsewhere, unmodified.
Several arguments are joined with single spaces. Flags after the first
argument belong to the command line, not to procbridge.`,
		Example: `  procbridge run "echo hello | tr a-z A-Z"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.engine.Run(cmd.Context(), strings.Join(args, " "))
			return a.printExecution(cmd, res)
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <name>...",
		Short: "Print which of the named processes are running",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.engine.Detect(cmd.Context(), args)
			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else {
				for _, name := range res.MatchedNames {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				if res.Error != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "procbridge: %s\n", res.Error)
				}
			}
			if !res.Success {
				return errFailed
			}
			return nil
		},
	}
}

func newKillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kill <name>...",
		Short: "Forcefully terminate every process with one of the given names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printExecution(cmd, a.engine.Kill(cmd.Context(), args))
		},
	}
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <app>",
		Short: "Launch an application by name or path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printExecution(cmd, a.engine.Open(cmd.Context(), args[0]))
		},
	}
}
