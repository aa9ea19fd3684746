// Package control is the operation boundary: run, detect, kill and open.
// Each call resolves the platform, synthesizes the native invocation,
// executes it once and folds every outcome, failures included, into a
// result value. Nothing is returned as an error and nothing is retried.
package control

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"github.com/deixis/procbridge/internal/command"
	"github.com/deixis/procbridge/internal/match"
	"github.com/deixis/procbridge/internal/platform"
	"github.com/deixis/procbridge/internal/runner"
)

// CommandRunner executes an argv and captures its output.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) (*runner.Result, error)
}

// Engine holds the dependencies shared by all operations. It carries no
// per-call state, so one Engine may serve concurrent callers.
type Engine struct {
	Runner CommandRunner

	// Resolve reports the platform at the start of each call.
	// Nil means platform.Resolve.
	Resolve func() platform.Kind

	// Logger receives debug traces of synthesized invocations. Nil is silent.
	Logger *zap.Logger
}

// New returns an Engine for the host platform.
func New(r CommandRunner, logger *zap.Logger) *Engine {
	return &Engine{Runner: r, Logger: logger}
}

// Platform returns the platform the next call will synthesize for.
func (e *Engine) Platform() platform.Kind {
	if e.Resolve == nil {
		return platform.Resolve()
	}
	return e.Resolve()
}

// At returns a copy of e that resolves to kind on every call. A caller that
// reports the platform next to a result uses it so both name the same one.
func (e *Engine) At(kind platform.Kind) *Engine {
	pinned := *e
	pinned.Resolve = func() platform.Kind { return kind }
	return &pinned
}

// Run executes text through the platform shell, unmodified.
func (e *Engine) Run(ctx context.Context, text string) ExecutionResult {
	inv, err := command.Run(e.Platform(), text)
	if err != nil {
		return spawnFailure(err)
	}
	return e.Execute(ctx, inv)
}

// Kill forcefully terminates every process with one of names. Killing
// processes that are not running is a nonzero exit, not a spawn failure.
func (e *Engine) Kill(ctx context.Context, names []string) ExecutionResult {
	inv, err := command.Kill(e.Platform(), names)
	if err != nil {
		return spawnFailure(err)
	}
	return e.Execute(ctx, inv)
}

// Open launches the named application.
func (e *Engine) Open(ctx context.Context, app string) ExecutionResult {
	inv, err := command.Open(e.Platform(), app)
	if err != nil {
		return spawnFailure(err)
	}
	return e.Execute(ctx, inv)
}

// Detect reports which of names appear in the platform's process listing.
// The listing's exit status is irrelevant: grep exits 1 when nothing
// matches, which is still a successful query.
func (e *Engine) Detect(ctx context.Context, names []string) ProcessQueryResult {
	kind := e.Platform()
	inv, err := command.Detect(kind, names)
	if err != nil {
		return ProcessQueryResult{MatchedNames: []string{}, Error: err.Error()}
	}

	res := e.Execute(ctx, inv)
	if res.SpawnFailed() {
		return ProcessQueryResult{MatchedNames: []string{}, Error: res.Error}
	}
	return ProcessQueryResult{
		Success:      true,
		MatchedNames: match.Names(res.Stdout, names, match.RuleFor(kind)),
	}
}

// Execute runs a synthesized invocation and normalizes its outcome.
func (e *Engine) Execute(ctx context.Context, inv command.Invocation) ExecutionResult {
	e.logger().Debug("executing", zap.Stringer("invocation", inv))

	res, err := e.Runner.Run(ctx, inv.Argv())
	if err != nil {
		return spawnFailure(err)
	}
	return ExecutionResult{
		Success:   res.ExitCode == 0,
		Stdout:    decode(res.Stdout),
		Stderr:    decode(res.Stderr),
		ExitCode:  res.ExitCode,
		Truncated: res.Truncated,
	}
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// decode converts captured bytes to text, replacing invalid UTF-8 sequences
// with U+FFFD. It never fails.
func decode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}
