package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/deixis/procbridge/internal/actions"
)

func newTemplatesCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the built-in action templates for this platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := templateList(a, category)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), list)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tENABLED\tCOMMAND")
			for _, t := range list {
				enabled := "no"
				if t.Enabled {
					enabled = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Category, enabled, t.Command)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list one category: system, apps, web, media or custom")

	cmd.AddCommand(&cobra.Command{
		Use:   "lint",
		Short: "Check that every template parses as POSIX shell (macOS and Linux)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := a.engine.Platform()
			problems := actions.Lint(kind, actions.All(kind))
			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), problems); err != nil {
					return err
				}
			} else {
				for _, p := range problems {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.ActionID, p.Message)
				}
			}
			if len(problems) > 0 {
				return errFailed
			}
			return nil
		},
	})
	return cmd
}

func templateList(a *app, category string) ([]actions.Action, error) {
	kind := a.engine.Platform()
	if category == "" {
		return actions.All(kind), nil
	}
	for _, c := range actions.Categories {
		if c.ID == category {
			return actions.InCategory(kind, category), nil
		}
	}
	return nil, errors.Newf("unknown category %q", category)
}
