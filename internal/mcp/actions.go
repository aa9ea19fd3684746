package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/procbridge/internal/actions"
	"github.com/deixis/procbridge/internal/platform"
	"github.com/deixis/procbridge/internal/preset"
	"github.com/deixis/procbridge/internal/report"
)

type templatesParams struct {
	Category string `json:"category,omitempty" jsonschema:"one of system, apps, web, media or custom. Defaults to all categories."`
}

type actionsParams struct {
	IDs []string `json:"ids" jsonschema:"template IDs from proc_templates, run in the given order"`
}

type presetsParams struct{}

type presetRunParams struct {
	ID   string `json:"id" jsonschema:"preset ID from proc_presets"`
	Wait bool   `json:"wait,omitempty" jsonschema:"wait for the preset's countdown before running. Default: false."`
}

func (h *handler) templatesHandler(ctx context.Context, req *mcp.CallToolRequest, params templatesParams) (*mcp.CallToolResult, any, error) {
	pk := h.engine.Platform()

	list := actions.All(pk)
	if params.Category != "" {
		if !knownCategory(params.Category) {
			return errorResult(fmt.Sprintf("unknown category %q (want one of %s)", params.Category, categoryIDs()))
		}
		list = actions.InCategory(pk, params.Category)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Platform: %s\n", pk)
	fmt.Fprintf(&b, "Templates (%d):\n", len(list))
	for _, a := range list {
		mark := " "
		if a.Enabled {
			mark = "*"
		}
		fmt.Fprintf(&b, "  %s %s [%s] %s: %s\n", mark, a.ID, a.Category, a.Name, a.Command)
	}
	if problems := actions.Lint(pk, list); len(problems) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Lint:")
		for _, p := range problems {
			fmt.Fprintf(&b, "  %s: %s\n", p.ActionID, p.Message)
		}
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "* enabled by default. Run with proc_actions(ids=[...]).")
	return textResult(b.String())
}

func (h *handler) actionsHandler(ctx context.Context, req *mcp.CallToolRequest, params actionsParams) (*mcp.CallToolResult, any, error) {
	if len(params.IDs) == 0 {
		return errorResult("ids must name at least one template")
	}

	pk := h.engine.Platform()
	list := make([]actions.Action, 0, len(params.IDs))
	var unknown []string
	for _, id := range params.IDs {
		a, ok := actions.ByID(pk, id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		// Naming a template is an explicit request to run it.
		a.Enabled = true
		list = append(list, a)
	}
	if len(unknown) > 0 {
		return errorResult(fmt.Sprintf("unknown template IDs: %s", strings.Join(unknown, ", ")))
	}

	run := report.NewRun(report.Actions, pk, params.IDs...)
	run.Outcomes = h.batchAt(pk).Execute(ctx, list)
	h.save(run)

	return outcomeResult(formatBatch(run, len(list)), run.Success())
}

func (h *handler) presetsHandler(ctx context.Context, req *mcp.CallToolRequest, _ presetsParams) (*mcp.CallToolResult, any, error) {
	if h.presets == nil {
		return errorResult("presets are not configured for this server")
	}
	list, err := h.presets.List()
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to read presets: %v", err))
	}
	if len(list) == 0 {
		return textResult(fmt.Sprintf("No presets saved in %s.", h.presets.Path()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Presets (%d):\n", len(list))
	for _, p := range list {
		fmt.Fprintf(&b, "  %s %q: %d/%d actions enabled, countdown %s\n",
			p.ID, p.Name, len(p.Enabled()), len(p.Actions), p.Duration)
	}
	return textResult(b.String())
}

func (h *handler) presetRunHandler(ctx context.Context, req *mcp.CallToolRequest, params presetRunParams) (*mcp.CallToolResult, any, error) {
	if h.presets == nil {
		return errorResult("presets are not configured for this server")
	}
	p, err := h.presets.Get(params.ID)
	if errors.Is(err, preset.ErrNotFound) {
		return errorResult(fmt.Sprintf("no preset with ID %q", params.ID))
	}
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to read presets: %v", err))
	}

	if params.Wait {
		if err := preset.Wait(ctx, p); err != nil {
			return errorResult(fmt.Sprintf("countdown for %s interrupted: %v", p.ID, err))
		}
	}

	pk := h.engine.Platform()
	enabled := p.Enabled()
	run := report.NewRun(report.Actions, pk, p.ID)
	run.Outcomes = h.batchAt(pk).Execute(ctx, enabled)
	h.save(run)

	return outcomeResult(formatBatch(run, len(enabled)), run.Success())
}

// batchAt runs actions on the platform the caller already reported.
func (h *handler) batchAt(pk platform.Kind) *actions.Batch {
	return &actions.Batch{Runner: h.engine.At(pk), Logger: h.logger}
}

func formatBatch(run *report.RunResult, planned int) string {
	var b strings.Builder

	failed := len(actions.Failed(run.Outcomes))
	fmt.Fprintln(&b, status(run.Success()))
	fmt.Fprintf(&b, "Run: %s\n", run.ID)
	fmt.Fprintf(&b, "Actions: %d/%d ran, %d failed\n", len(run.Outcomes), planned, failed)
	fmt.Fprintln(&b)

	for _, o := range run.Outcomes {
		fmt.Fprintf(&b, "  %s: %s\n", o.Action.ID, outcomeLabel(o.Result))
	}
	if len(run.Outcomes) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Inspect with proc_inspect(run_id=%q, stream=\"stdout\").\n", run.ID)
	}
	return b.String()
}

func knownCategory(id string) bool {
	for _, c := range actions.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func categoryIDs() string {
	ids := make([]string, len(actions.Categories))
	for i, c := range actions.Categories {
		ids[i] = c.ID
	}
	return strings.Join(ids, ", ")
}
