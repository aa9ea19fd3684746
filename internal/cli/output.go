package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/deixis/procbridge/internal/actions"
	"github.com/deixis/procbridge/internal/control"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printExecution relays a process's streams the way a terminal would.
// It returns errFailed when the result is not a success.
func (a *app) printExecution(cmd *cobra.Command, res control.ExecutionResult) error {
	if a.jsonOut {
		if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
		fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
		switch {
		case res.SpawnFailed():
			fmt.Fprintf(cmd.ErrOrStderr(), "procbridge: %s\n", res.Error)
		case !res.Success:
			fmt.Fprintf(cmd.ErrOrStderr(), "procbridge: exit status %d\n", res.ExitCode)
		}
		if res.Truncated {
			fmt.Fprintln(cmd.ErrOrStderr(), "procbridge: output truncated at max_output")
		}
	}
	if !res.Success {
		return errFailed
	}
	return nil
}

func (a *app) printOutcomes(cmd *cobra.Command, outcomes []actions.Outcome) error {
	if a.jsonOut {
		if err := writeJSON(cmd.OutOrStdout(), outcomes); err != nil {
			return err
		}
	} else {
		for _, o := range outcomes {
			status := "ok"
			if !o.Result.Success {
				status = fmt.Sprintf("failed (exit %d)", o.Result.ExitCode)
				if o.Result.Error != "" {
					status = "failed: " + o.Result.Error
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", o.Action.ID, status)
		}
	}
	if len(actions.Failed(outcomes)) > 0 {
		return errFailed
	}
	return nil
}
