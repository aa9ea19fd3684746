package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/deixis/procbridge/internal/actions"
	"github.com/deixis/procbridge/internal/preset"
)

func newPresetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved sets of actions",
	}
	cmd.AddCommand(newPresetListCmd(a))
	cmd.AddCommand(newPresetShowCmd(a))
	cmd.AddCommand(newPresetSaveCmd(a))
	cmd.AddCommand(newPresetDeleteCmd(a))
	cmd.AddCommand(newPresetRunCmd(a))
	return cmd
}

func newPresetListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.presets().List()
			if err != nil {
				return err
			}
			if a.jsonOut {
				if list == nil {
					list = []*preset.Preset{}
				}
				return writeJSON(cmd.OutOrStdout(), list)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tACTIONS\tCOUNTDOWN")
			for _, p := range list {
				fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n", p.ID, p.Name, len(p.Enabled()), len(p.Actions), p.Duration)
			}
			return w.Flush()
		},
	}
}

func newPresetShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.presets().Get(args[0])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return errors.Wrap(err, "encoding preset")
			}
			return enc.Close()
		},
	}
}

func newPresetSaveCmd(a *app) *cobra.Command {
	var (
		id          string
		name        string
		description string
		duration    time.Duration
		templates   []string
		commands    []string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a preset, or update one with --id",
		Example: `  procbridge preset save --name "Night" --duration 30m --template kill-browser --template sleep
  procbridge preset save --id preset-... --command "Say bye=echo bye"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := presetActions(a, templates, commands)
			if err != nil {
				return err
			}

			store := a.presets()
			var p *preset.Preset
			if id != "" {
				p, err = store.Get(id)
				if err != nil {
					return err
				}
				if name != "" {
					p.Name = name
				}
				if cmd.Flags().Changed("description") {
					p.Description = description
				}
				if cmd.Flags().Changed("duration") {
					p.Duration = duration
				}
				if len(list) > 0 {
					p.Actions = list
				}
			} else {
				if name == "" {
					return errors.New("--name is required for a new preset")
				}
				p = preset.New(name, description, duration, list)
			}

			if problems := actions.Lint(a.engine.Platform(), p.Actions); len(problems) > 0 {
				for _, pr := range problems {
					a.logger.Warn("action does not parse", zap.String("action", pr.ActionID), zap.String("problem", pr.Message))
				}
			}
			if err := store.Save(p); err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Update the preset with this ID")
	cmd.Flags().StringVar(&name, "name", "", "Preset name")
	cmd.Flags().StringVar(&description, "description", "", "Preset description")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Countdown before the actions run (e.g. 30m)")
	cmd.Flags().StringArrayVar(&templates, "template", nil, "Template ID to include (repeatable)")
	cmd.Flags().StringArrayVar(&commands, "command", nil, `Custom action as "Name=command line" (repeatable)`)
	return cmd
}

// presetActions builds the action list from template IDs followed by
// custom "Name=command" pairs.
func presetActions(a *app, templates, commands []string) ([]actions.Action, error) {
	kind := a.engine.Platform()
	var list []actions.Action
	for _, id := range templates {
		t, ok := actions.ByID(kind, id)
		if !ok {
			return nil, errors.Newf("unknown template %q", id)
		}
		t.Enabled = true
		list = append(list, t)
	}
	for _, c := range commands {
		name, line, ok := strings.Cut(c, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(line) == "" {
			return nil, errors.Newf("custom action %q: want Name=command", c)
		}
		list = append(list, actions.Action{
			ID:       "custom-" + uuid.New().String(),
			Name:     strings.TrimSpace(name),
			Command:  line,
			Enabled:  true,
			Category: "custom",
			Custom:   true,
		})
	}
	return list, nil
}

func newPresetDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.presets().Delete(args[0])
		},
	}
}

func newPresetRunCmd(a *app) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Run a preset's enabled actions in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.presets().Get(args[0])
			if err != nil {
				return err
			}

			if wait && p.Duration > 0 {
				a.logger.Info("waiting for countdown",
					zap.String("preset", p.Name),
					zap.Duration("duration", p.Duration),
				)
				if err := preset.Wait(cmd.Context(), p); err != nil {
					return errors.Wrap(err, "countdown cancelled")
				}
			}

			batch := &actions.Batch{Runner: a.engine, Logger: a.logger}
			return a.printOutcomes(cmd, batch.Execute(cmd.Context(), p.Actions))
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the preset's countdown first")
	return cmd
}
