// Package mcp provides the procbridge MCP server, registering the process
// control tools and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/deixis/procbridge"
	"github.com/deixis/procbridge/internal/control"
	"github.com/deixis/procbridge/internal/preset"
	"github.com/deixis/procbridge/internal/report"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	engine  *control.Engine
	store   report.Store
	presets *preset.FileStore // nil when presets are not configured
	logger  *zap.Logger
}

// NewServer creates an MCP server with all procbridge tools registered.
func NewServer(engine *control.Engine, store report.Store, logger *zap.Logger, opts ...ServerOption) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	var so serverOptions
	for _, o := range opts {
		o(&so)
	}

	h := &handler{
		engine:  engine,
		store:   store,
		presets: so.presets,
		logger:  logger,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.logger.Info("session initialized", zap.Stringer("platform", h.engine.Platform()))
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "procbridge", Version: procbridge.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "proc_platform",
		Description: "Report the host platform, the shell commands run through, and the available action templates.",
	}, h.platformHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proc_run",
		Description: `Run a command line through the platform shell (cmd /C on Windows, sh -c elsewhere).

The text is passed through unmodified: quoting, pipes and redirection behave exactly as in a terminal.
Waits for the process to exit. Results are stored for drill-down via proc_inspect.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proc_detect",
		Description: `Report which of the given process names are currently running.

Matching is a text heuristic over the native process listing: case-insensitive containment on Windows,
" name " or "/name" on macOS and Linux. Matched names keep the order they were requested in.`,
	}, h.detectHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proc_kill",
		Description: `Forcefully terminate every process with one of the given names (taskkill /F, killall).

Killing a process that is not running reports a nonzero exit, not an error.`,
	}, h.killHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "proc_open",
		Description: "Launch an application by name or path (start, open -a, or a background launch on Linux).",
	}, h.openHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "proc_templates",
		Description: "List the built-in action templates for this platform, optionally for one category.",
	}, h.templatesHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proc_actions",
		Description: `Run action templates by ID, one after another, and report each outcome.

A failing action does not stop the rest. Results are stored for drill-down via proc_inspect.`,
	}, h.actionsHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "proc_presets",
		Description: "List saved presets: named sets of actions with a countdown.",
	}, h.presetsHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proc_preset_run",
		Description: `Run the enabled actions of a saved preset.

With wait=true the preset's countdown elapses first.`,
	}, h.presetRunHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proc_inspect",
		Description: `Fetch the full stdout or stderr of a stored run.

Use the run_id printed by proc_run, proc_kill, proc_open, proc_actions or proc_preset_run.`,
	}, h.inspectHandler)

	return s
}

// ServerOption configures the procbridge MCP server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	presets *preset.FileStore
}

// WithPresets enables the preset tools backed by store.
func WithPresets(store *preset.FileStore) ServerOption {
	return func(o *serverOptions) {
		o.presets = store
	}
}

// save records a run for proc_inspect. A failing store never fails the tool.
func (h *handler) save(r *report.RunResult) {
	if err := h.store.Save(r); err != nil {
		h.logger.Warn("saving run", zap.String("run_id", r.ID), zap.Error(err))
	}
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}

// outcomeResult reports text, flagged as an error when ok is false.
func outcomeResult(text string, ok bool) (*mcp.CallToolResult, any, error) {
	if !ok {
		return errorResult(text)
	}
	return textResult(text)
}
