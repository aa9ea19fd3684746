package actions

import (
	"context"

	"go.uber.org/zap"

	"github.com/deixis/procbridge/internal/control"
)

// Runner executes one shell command. Implemented by control.Engine.
type Runner interface {
	Run(ctx context.Context, text string) control.ExecutionResult
}

// Outcome pairs an executed action with its result.
type Outcome struct {
	Action Action                  `json:"action"`
	Result control.ExecutionResult `json:"result"`
}

// Batch runs actions one after another.
type Batch struct {
	Runner Runner
	Logger *zap.Logger
}

// Execute runs every enabled action in order and returns one Outcome per
// action that ran. Disabled actions are skipped. A failing action does not
// stop the batch. Cancelling ctx stops before the next action starts.
func (b *Batch) Execute(ctx context.Context, list []Action) []Outcome {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	out := make([]Outcome, 0, len(list))
	for _, a := range list {
		if !a.Enabled {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		res := b.Runner.Run(ctx, a.Command)
		if !res.Success {
			msg := res.Stderr
			if msg == "" {
				msg = res.Error
			}
			logger.Warn("action failed",
				zap.String("action", a.Name),
				zap.Int("exit_code", res.ExitCode),
				zap.String("detail", msg),
			)
		}
		out = append(out, Outcome{Action: a, Result: res})
	}
	return out
}

// Failed returns the outcomes whose result was not a success.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if !o.Result.Success {
			out = append(out, o)
		}
	}
	return out
}
