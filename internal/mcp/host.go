package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/procbridge/internal/actions"
	"github.com/deixis/procbridge/internal/command"
	"github.com/deixis/procbridge/internal/platform"
)

type platformParams struct{}

func (h *handler) platformHandler(ctx context.Context, req *sdkmcp.CallToolRequest, _ platformParams) (*sdkmcp.CallToolResult, any, error) {
	pk := h.engine.Platform()

	var b strings.Builder
	fmt.Fprintf(&b, "Platform: %s\n", pk)
	if !pk.Supported() {
		fmt.Fprintln(&b, "Supported: no. Every operation fails without spawning a process.")
		return textResult(b.String())
	}

	program, flag := pk.Shell()
	fmt.Fprintf(&b, "Shell: %s %s\n", program, flag)
	if pk == platform.Resolve() {
		if missing := command.Missing(pk, nil); len(missing) > 0 {
			fmt.Fprintf(&b, "Missing tools: %s\n", strings.Join(missing, ", "))
		} else {
			fmt.Fprintf(&b, "Tools: %s\n", strings.Join(command.Tools(pk), ", "))
		}
	}
	if h.presets != nil {
		fmt.Fprintf(&b, "Presets: %s\n", h.presets.Path())
	}
	fmt.Fprintln(&b)

	byCat := actions.Templates(pk)
	fmt.Fprintln(&b, "Template categories:")
	for _, c := range actions.Categories {
		fmt.Fprintf(&b, "  %s (%s): %d\n", c.ID, c.Name, len(byCat[c.ID]))
	}
	return textResult(b.String())
}
