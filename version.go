// Package procbridge runs shell commands, detects and terminates named
// processes, and launches applications through the host's native tools.
package procbridge

// Version is reported by the CLI and the MCP server.
const Version = "0.3.0"
