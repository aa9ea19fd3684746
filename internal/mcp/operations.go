package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/procbridge/internal/command"
	"github.com/deixis/procbridge/internal/control"
	"github.com/deixis/procbridge/internal/report"
)

// previewLines bounds each stream in a tool summary. The full text stays
// available through proc_inspect.
const previewLines = 40

type runParams struct {
	Command string `json:"command" jsonschema:"the command line, passed verbatim to the platform shell"`
}

type namesParams struct {
	Names []string `json:"names" jsonschema:"process image names, e.g. chrome.exe on Windows or firefox elsewhere"`
}

type openParams struct {
	App string `json:"app" jsonschema:"application name or path, e.g. Safari on macOS or notepad on Windows"`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	pk := h.engine.Platform()
	run := report.NewRun(report.Run, pk, params.Command)
	if inv, err := command.Run(pk, params.Command); err == nil {
		run.Invocation = &inv
	}

	res := h.engine.At(pk).Run(ctx, params.Command)
	run.Execution = &res
	h.save(run)

	return outcomeResult(formatExecution(run), res.Success)
}

func (h *handler) killHandler(ctx context.Context, req *mcp.CallToolRequest, params namesParams) (*mcp.CallToolResult, any, error) {
	pk := h.engine.Platform()
	run := report.NewRun(report.Kill, pk, params.Names...)
	if inv, err := command.Kill(pk, params.Names); err == nil {
		run.Invocation = &inv
	}

	res := h.engine.At(pk).Kill(ctx, params.Names)
	run.Execution = &res
	h.save(run)

	return outcomeResult(formatExecution(run), res.Success)
}

func (h *handler) openHandler(ctx context.Context, req *mcp.CallToolRequest, params openParams) (*mcp.CallToolResult, any, error) {
	pk := h.engine.Platform()
	run := report.NewRun(report.Open, pk, params.App)
	if inv, err := command.Open(pk, params.App); err == nil {
		run.Invocation = &inv
	}

	res := h.engine.At(pk).Open(ctx, params.App)
	run.Execution = &res
	h.save(run)

	return outcomeResult(formatExecution(run), res.Success)
}

func (h *handler) detectHandler(ctx context.Context, req *mcp.CallToolRequest, params namesParams) (*mcp.CallToolResult, any, error) {
	pk := h.engine.Platform()
	run := report.NewRun(report.Detect, pk, params.Names...)
	if inv, err := command.Detect(pk, params.Names); err == nil {
		run.Invocation = &inv
	}

	res := h.engine.At(pk).Detect(ctx, params.Names)
	run.Query = &res
	h.save(run)

	return outcomeResult(formatQuery(run), res.Success)
}

func status(ok bool) string {
	if ok {
		return "Status: PASS"
	}
	return "Status: FAIL"
}

func formatExecution(run *report.RunResult) string {
	res := run.Execution
	var b strings.Builder

	fmt.Fprintln(&b, status(res.Success))
	fmt.Fprintf(&b, "Run: %s\n", run.ID)
	fmt.Fprintf(&b, "Platform: %s\n", run.Platform)
	if run.Invocation != nil {
		fmt.Fprintf(&b, "Invocation: %s\n", run.Invocation)
	}
	fmt.Fprintf(&b, "Exit code: %d\n", res.ExitCode)
	if res.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", res.Error)
	}
	if res.Truncated {
		fmt.Fprintln(&b, "Output truncated at the configured max_output.")
	}

	writeStream(&b, run.ID, "stdout", res.Stdout)
	writeStream(&b, run.ID, "stderr", res.Stderr)
	return b.String()
}

func writeStream(b *strings.Builder, runID, name, text string) {
	if text == "" {
		return
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	fmt.Fprintln(b)
	fmt.Fprintf(b, "%s:\n", name)
	for i, line := range lines {
		if i == previewLines {
			fmt.Fprintf(b, "  ... %d more lines. Inspect with proc_inspect(run_id=%q, stream=%q).\n", len(lines)-i, runID, name)
			break
		}
		fmt.Fprintf(b, "  %s\n", line)
	}
}

func formatQuery(run *report.RunResult) string {
	res := run.Query
	var b strings.Builder

	fmt.Fprintln(&b, status(res.Success))
	fmt.Fprintf(&b, "Run: %s\n", run.ID)
	fmt.Fprintf(&b, "Platform: %s\n", run.Platform)
	if res.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", res.Error)
		return b.String()
	}

	fmt.Fprintf(&b, "Requested (%d): %s\n", len(run.Input), strings.Join(run.Input, ", "))
	if len(res.MatchedNames) == 0 {
		fmt.Fprintln(&b, "Running: none")
	} else {
		fmt.Fprintf(&b, "Running (%d): %s\n", len(res.MatchedNames), strings.Join(res.MatchedNames, ", "))
	}
	return b.String()
}

// outcomeLabel summarises one action result on a single line.
func outcomeLabel(res control.ExecutionResult) string {
	switch {
	case res.Success:
		return "ok"
	case res.SpawnFailed():
		return "error (" + res.Error + ")"
	default:
		return fmt.Sprintf("exit %d", res.ExitCode)
	}
}
