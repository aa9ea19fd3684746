// Command procbridge runs, detects, kills and launches native processes
// from the command line or as an MCP server.
package main

import "github.com/deixis/procbridge/internal/cli"

func main() {
	cli.Execute()
}
