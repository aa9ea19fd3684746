package command

import (
	"os/exec"

	"github.com/deixis/procbridge/internal/platform"
)

// Tools returns the native programs the invocations for kind rely on.
// Open on Linux launches the application itself, so it needs nothing extra.
func Tools(kind platform.Kind) []string {
	switch kind {
	case platform.Windows:
		return []string{"cmd", "tasklist", "taskkill"}
	case platform.MacOS:
		return []string{"sh", "ps", "grep", "killall", "open"}
	case platform.Linux:
		return []string{"sh", "ps", "grep", "killall"}
	}
	return nil
}

// Missing returns the tools for kind that lookPath cannot find.
// A nil lookPath means exec.LookPath.
func Missing(kind platform.Kind, lookPath func(string) (string, error)) []string {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var missing []string
	for _, name := range Tools(kind) {
		if _, err := lookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}
