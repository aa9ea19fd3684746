package cli

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/deixis/procbridge/internal/command"
	"github.com/deixis/procbridge/internal/platform"
)

func newSynthCmd(a *app) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "synth <run|detect|kill|open> [args...]",
		Short: "Print the native invocation an operation would spawn, without running it",
		Example: `  procbridge synth detect chrome.exe firefox.exe --platform windows
  procbridge synth open Safari --platform macos`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := a.engine.Platform()
			if target != "" {
				k, err := platform.Parse(target)
				if err != nil {
					return err
				}
				kind = k
			}

			inv, err := synthesize(kind, args[0], args[1:])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), inv)
			}
			fmt.Fprintln(cmd.OutOrStdout(), inv)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "platform", "", "Target platform: windows, macos or linux (default host)")
	return cmd
}

func synthesize(kind platform.Kind, op string, args []string) (command.Invocation, error) {
	switch op {
	case "run":
		return command.Run(kind, strings.Join(args, " "))
	case "detect":
		return command.Detect(kind, args)
	case "kill":
		return command.Kill(kind, args)
	case "open":
		if len(args) != 1 {
			return command.Invocation{}, errors.Newf("open takes exactly one application, got %d", len(args))
		}
		return command.Open(kind, args[0])
	}
	return command.Invocation{}, errors.Newf("unknown operation %q (want run, detect, kill or open)", op)
}
