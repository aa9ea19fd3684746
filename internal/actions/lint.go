package actions

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/deixis/procbridge/internal/platform"
)

// Problem is a syntax error found in an action's command.
type Problem struct {
	ActionID string `json:"action_id"`
	Message  string `json:"message"`
}

// Lint parses each action's command as POSIX shell and reports those that
// do not parse. It is advisory: nothing here changes what Run executes.
// Windows commands go to cmd.exe, which has no parser here, so Lint returns
// nothing for Windows.
func Lint(kind platform.Kind, list []Action) []Problem {
	if kind == platform.Windows {
		return nil
	}

	var problems []Problem
	for _, a := range list {
		if strings.TrimSpace(a.Command) == "" {
			problems = append(problems, Problem{ActionID: a.ID, Message: "empty command"})
			continue
		}
		parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
		if _, err := parser.Parse(strings.NewReader(a.Command), a.ID); err != nil {
			problems = append(problems, Problem{ActionID: a.ID, Message: err.Error()})
		}
	}
	return problems
}
