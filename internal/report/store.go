// Package report keeps the results of past operations so a front-end can
// fetch full output later by run ID.
package report

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/deixis/procbridge/internal/actions"
	"github.com/deixis/procbridge/internal/command"
	"github.com/deixis/procbridge/internal/control"
	"github.com/deixis/procbridge/internal/platform"
)

// ErrNotFound is returned when no result is stored under a run ID.
var ErrNotFound = errors.New("run not found")

// Kind identifies the operation that produced a run.
type Kind string

const (
	Run     Kind = "run"
	Detect  Kind = "detect"
	Kill    Kind = "kill"
	Open    Kind = "open"
	Actions Kind = "actions"
)

// Store persists and retrieves run results.
type Store interface {
	Save(result *RunResult) error
	Load(runID string) (*RunResult, error)
}

// RunResult is one stored operation. Exactly one of Execution, Query or
// Outcomes is set, according to Kind.
type RunResult struct {
	ID         string                      `json:"id"`
	Kind       Kind                        `json:"kind"`
	Platform   platform.Kind               `json:"platform"`
	Input      []string                    `json:"input,omitempty"`
	Invocation *command.Invocation         `json:"invocation,omitempty"`
	Execution  *control.ExecutionResult    `json:"execution,omitempty"`
	Query      *control.ProcessQueryResult `json:"query,omitempty"`
	Outcomes   []actions.Outcome           `json:"outcomes,omitempty"`
	StartedAt  time.Time                   `json:"started_at"`
}

// NewRun returns an empty result with a fresh ID.
func NewRun(kind Kind, pk platform.Kind, input ...string) *RunResult {
	return &RunResult{
		ID:        uuid.New().String(),
		Kind:      kind,
		Platform:  pk,
		Input:     input,
		StartedAt: time.Now().UTC(),
	}
}

// Success reports whether the stored operation succeeded. A batch of
// actions succeeds when every action did.
func (r *RunResult) Success() bool {
	switch {
	case r.Execution != nil:
		return r.Execution.Success
	case r.Query != nil:
		return r.Query.Success
	default:
		return len(actions.Failed(r.Outcomes)) == 0
	}
}

// Stream returns the captured "stdout" or "stderr" of a run. For a batch
// the per-action streams are concatenated under a header line each.
func Stream(r *RunResult, name string) (string, error) {
	pick := func(res control.ExecutionResult) (string, error) {
		switch name {
		case "stdout":
			return res.Stdout, nil
		case "stderr":
			return res.Stderr, nil
		}
		return "", errors.Newf("unknown stream %q (want stdout or stderr)", name)
	}

	switch {
	case r.Execution != nil:
		return pick(*r.Execution)
	case len(r.Outcomes) > 0:
		var b strings.Builder
		for _, o := range r.Outcomes {
			text, err := pick(o.Result)
			if err != nil {
				return "", err
			}
			b.WriteString("== " + o.Action.ID + " ==\n")
			b.WriteString(text)
			if text != "" && !strings.HasSuffix(text, "\n") {
				b.WriteByte('\n')
			}
		}
		return b.String(), nil
	}
	return "", errors.Newf("run %s (%s) has no captured output", r.ID, r.Kind)
}
