package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/procbridge/internal/report"
)

type inspectParams struct {
	RunID  string `json:"run_id" jsonschema:"the run ID from a proc_run, proc_kill, proc_open, proc_actions or proc_preset_run result"`
	Stream string `json:"stream" jsonschema:"stdout or stderr"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}
	if params.Stream == "" {
		return errorResult("stream is required")
	}

	result, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	text, err := report.Stream(result, params.Stream)
	if err != nil {
		return errorResult(err.Error())
	}
	return textResult(formatInspectOutput(result, params.Stream, text))
}

func formatInspectOutput(result *report.RunResult, stream, text string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s (%s)\n", result.ID, result.Kind)
	if len(result.Input) > 0 {
		fmt.Fprintf(&b, "Input: %s\n", strings.Join(result.Input, " "))
	}
	if text == "" {
		fmt.Fprintf(&b, "%s: (empty)\n", stream)
		return b.String()
	}
	fmt.Fprintf(&b, "%s:\n", stream)
	fmt.Fprintln(&b)
	b.WriteString(text)
	return b.String()
}
