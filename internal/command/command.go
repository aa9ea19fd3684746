// Package command builds the native shell invocation for each process
// operation. Nothing here spawns a process; the output is a plain
// Invocation that the runner executes.
//
// Caller text is never escaped or validated. A command passed to Run
// reaches the shell verbatim, and process or application names are
// interpolated into the command line as given. Callers are trusted.
package command

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/deixis/procbridge/internal/platform"
)

// ErrUnsupportedPlatform is returned for every operation on a host outside
// the supported platform kinds.
var ErrUnsupportedPlatform = errors.New("unsupported operating system")

// Invocation is a synthesized command: the interpreter and its arguments.
type Invocation struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
}

// Argv returns Program followed by Args.
func (i Invocation) Argv() []string {
	return append([]string{i.Program}, i.Args...)
}

// String renders the invocation for display only. It is not a re-parsable
// shell command line.
func (i Invocation) String() string {
	var b strings.Builder
	b.WriteString(i.Program)
	for _, a := range i.Args {
		b.WriteByte(' ')
		if a == "" || strings.ContainsAny(a, " \t\"") {
			fmt.Fprintf(&b, "%q", a)
		} else {
			b.WriteString(a)
		}
	}
	return b.String()
}

// Shell wraps text as a single command string for the platform's shell.
func Shell(kind platform.Kind, text string) Invocation {
	prog, flag := kind.Shell()
	return Invocation{Program: prog, Args: []string{flag, text}}
}

// Run synthesizes an arbitrary shell command.
func Run(kind platform.Kind, text string) (Invocation, error) {
	if !kind.Supported() {
		return Invocation{}, ErrUnsupportedPlatform
	}
	return Shell(kind, text), nil
}

// Detect synthesizes a process listing filtered to names.
//
// On Windows the listing is tasklist with an OR of IMAGENAME filters and no
// header. Elsewhere it is ps piped through an extended-regexp alternation of
// the names, minus grep's own line. An empty names slice still yields a valid
// command: an empty filter on Windows, a match-everything pattern elsewhere.
func Detect(kind platform.Kind, names []string) (Invocation, error) {
	switch kind {
	case platform.Windows:
		filters := make([]string, len(names))
		for i, n := range names {
			filters[i] = "IMAGENAME eq " + n
		}
		return Shell(kind, fmt.Sprintf("tasklist /FI \"%s\" /NH", strings.Join(filters, " || "))), nil
	case platform.MacOS, platform.Linux:
		pattern := strings.Join(names, "|")
		return Shell(kind, fmt.Sprintf("ps aux | grep -E \"%s\" | grep -v grep", pattern)), nil
	}
	return Invocation{}, ErrUnsupportedPlatform
}

// Kill synthesizes a forceful termination of every named process in one
// command line: taskkill /F with one /IM per name on Windows, a single
// killall elsewhere. An empty names slice yields the bare tool invocation,
// which the tool itself rejects with a nonzero exit.
func Kill(kind platform.Kind, names []string) (Invocation, error) {
	switch kind {
	case platform.Windows:
		images := make([]string, len(names))
		for i, n := range names {
			images[i] = "/IM " + n
		}
		return Shell(kind, "taskkill /F "+strings.Join(images, " ")), nil
	case platform.MacOS, platform.Linux:
		return Shell(kind, "killall "+strings.Join(names, " ")), nil
	}
	return Invocation{}, ErrUnsupportedPlatform
}

// Open synthesizes a launch of the named application.
//
// Windows uses start with an empty title so quoted names with spaces are
// taken as the program. macOS uses open -a. Linux runs the name directly in
// the background so the call returns without waiting for the application.
func Open(kind platform.Kind, app string) (Invocation, error) {
	switch kind {
	case platform.Windows:
		return Shell(kind, fmt.Sprintf("start \"\" \"%s\"", app)), nil
	case platform.MacOS:
		return Shell(kind, fmt.Sprintf("open -a \"%s\"", app)), nil
	case platform.Linux:
		return Shell(kind, app+" &"), nil
	}
	return Invocation{}, ErrUnsupportedPlatform
}
