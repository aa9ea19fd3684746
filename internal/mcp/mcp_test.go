package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deixis/procbridge/internal/actions"
	"github.com/deixis/procbridge/internal/command"
	"github.com/deixis/procbridge/internal/control"
	"github.com/deixis/procbridge/internal/platform"
	"github.com/deixis/procbridge/internal/preset"
	"github.com/deixis/procbridge/internal/report"
	"github.com/deixis/procbridge/internal/runner"
)

// fakeRunner records every argv and answers with a fixed result.
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	result runner.Result
}

func (f *fakeRunner) Run(_ context.Context, argv []string) (*runner.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), argv...))
	res := f.result
	return &res, nil
}

func (f *fakeRunner) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// setup creates a procbridge MCP server + client over in-memory transports.
// A nil kind uses the host platform.
func setup(t *testing.T, r control.CommandRunner, kind *platform.Kind, opts ...ServerOption) *mcp.ClientSession {
	t.Helper()

	engine := control.New(r, nil)
	if kind != nil {
		k := *kind
		engine.Resolve = func() platform.Kind { return k }
	}
	return connect(t, engine, opts...)
}

// connect serves engine to an in-memory client.
func connect(t *testing.T, engine *control.Engine, opts ...ServerOption) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	disk := report.NewDiskStore()
	t.Cleanup(func() { _ = os.RemoveAll(disk.Dir()) })
	store := report.NewLRUStore(5, disk)

	server := NewServer(engine, store, nil, opts...)

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err, "server.Connect")

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err, "client.Connect")

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs
}

// hostSetup wires a real runner and skips where the tests' sh syntax does not apply.
func hostSetup(t *testing.T) *mcp.ClientSession {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("host tests use sh syntax")
	}
	return setup(t, &runner.Runner{}, nil)
}

func kindPtr(k platform.Kind) *platform.Kind { return &k }

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool(%s)", name)
	return res
}

func resultText(r *mcp.CallToolResult) string {
	var parts []string
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func runIDOf(t *testing.T, text string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "Run: ") {
			return strings.TrimPrefix(line, "Run: ")
		}
	}
	t.Fatalf("no Run ID found in output:\n%s", text)
	return ""
}

// --- proc_run ---

func TestProcRun_Success(t *testing.T) {
	cs := hostSetup(t)
	res := callTool(t, cs, "proc_run", map[string]any{"command": "echo hello"})
	text := resultText(res)
	require.False(t, res.IsError, text)
	assert.Contains(t, text, "Status: PASS")
	assert.Contains(t, text, "Exit code: 0")
	assert.Contains(t, text, "  hello")
	assert.Contains(t, text, "Invocation: sh -c")
}

func TestProcRun_NonzeroExit(t *testing.T) {
	cs := hostSetup(t)
	res := callTool(t, cs, "proc_run", map[string]any{"command": "echo oops >&2; exit 3"})
	text := resultText(res)
	assert.True(t, res.IsError)
	assert.Contains(t, text, "Status: FAIL")
	assert.Contains(t, text, "Exit code: 3")
	assert.Contains(t, text, "stderr:\n  oops")
}

func TestProcRun_UnsupportedPlatform(t *testing.T) {
	fake := &fakeRunner{}
	cs := setup(t, fake, kindPtr(platform.Unsupported))
	res := callTool(t, cs, "proc_run", map[string]any{"command": "echo hi"})
	text := resultText(res)
	assert.True(t, res.IsError)
	assert.Contains(t, text, "unsupported operating system")
	assert.Contains(t, text, "Exit code: -1")
	assert.Empty(t, fake.Calls(), "nothing spawned")
}

func TestProcRun_MissingCommand(t *testing.T) {
	cs := setup(t, &fakeRunner{}, kindPtr(platform.Linux))
	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "proc_run",
		Arguments: map[string]any{},
	})
	assert.Error(t, err, "command is required")
}

func TestProcRun_VerbatimToShell(t *testing.T) {
	fake := &fakeRunner{}
	cs := setup(t, fake, kindPtr(platform.Windows))
	callTool(t, cs, "proc_run", map[string]any{"command": `echo "a & b" | findstr a`})
	require.Len(t, fake.Calls(), 1)
	assert.Equal(t, []string{"cmd", "/C", `echo "a & b" | findstr a`}, fake.Calls()[0])
}

// --- proc_detect / proc_kill / proc_open ---

func TestProcDetect_NothingRunning(t *testing.T) {
	cs := hostSetup(t)
	res := callTool(t, cs, "proc_detect", map[string]any{"names": []string{"procbridge-no-such-process"}})
	text := resultText(res)
	require.False(t, res.IsError, text)
	assert.Contains(t, text, "Running: none")
}

func TestProcDetect_OrderAndMatching(t *testing.T) {
	fake := &fakeRunner{result: runner.Result{
		ExitCode: 0,
		Stdout:   []byte("user 1 0.0 /usr/bin/firefox\nuser 2 0.0 spotify --x\n"),
	}}
	cs := setup(t, fake, kindPtr(platform.Linux))
	res := callTool(t, cs, "proc_detect", map[string]any{"names": []string{"spotify", "slack", "firefox"}})
	text := resultText(res)
	require.False(t, res.IsError, text)
	assert.Contains(t, text, "Running (2): spotify, firefox")
	assert.Equal(t, []string{"sh", "-c", `ps aux | grep -E "spotify|slack|firefox" | grep -v grep`}, fake.Calls()[0])
}

func TestProcKill_NotRunningIsNonzeroExit(t *testing.T) {
	fake := &fakeRunner{result: runner.Result{ExitCode: 1, Stderr: []byte("ghost: no process found\n")}}
	cs := setup(t, fake, kindPtr(platform.Linux))
	res := callTool(t, cs, "proc_kill", map[string]any{"names": []string{"ghost"}})
	text := resultText(res)
	assert.True(t, res.IsError)
	assert.Contains(t, text, "Exit code: 1")
	assert.NotContains(t, text, "Error:")
	assert.Equal(t, []string{"sh", "-c", "killall ghost"}, fake.Calls()[0])
}

func TestProcOpen(t *testing.T) {
	fake := &fakeRunner{}
	cs := setup(t, fake, kindPtr(platform.MacOS))
	res := callTool(t, cs, "proc_open", map[string]any{"app": "Safari"})
	require.False(t, res.IsError, resultText(res))
	assert.Equal(t, []string{"sh", "-c", `open -a "Safari"`}, fake.Calls()[0])
}

// flipping resolves to a different platform on every call. Session setup
// may consume resolutions too, so tests only rely on consistency.
func flipping() func() platform.Kind {
	var mu sync.Mutex
	kinds := []platform.Kind{platform.Linux, platform.MacOS, platform.Windows}
	i := 0
	return func() platform.Kind {
		mu.Lock()
		defer mu.Unlock()
		k := kinds[i%len(kinds)]
		i++
		return k
	}
}

func reportedPlatform(t *testing.T, text string) platform.Kind {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if name, ok := strings.CutPrefix(line, "Platform: "); ok {
			k, err := platform.Parse(name)
			require.NoError(t, err)
			return k
		}
	}
	t.Fatalf("no Platform line in output:\n%s", text)
	return platform.Unsupported
}

func TestProcOpen_ReportsThePlatformItRanOn(t *testing.T) {
	fake := &fakeRunner{}
	engine := control.New(fake, nil)
	engine.Resolve = flipping()
	cs := connect(t, engine)

	for i := 0; i < 3; i++ {
		text := resultText(callTool(t, cs, "proc_open", map[string]any{"app": "Safari"}))
		kind := reportedPlatform(t, text)
		inv, err := command.Open(kind, "Safari")
		require.NoError(t, err)

		calls := fake.Calls()
		require.Len(t, calls, i+1)
		assert.Equal(t, inv.Argv(), calls[i], "reported %s", kind)
		assert.Contains(t, text, "Invocation: "+inv.String())
	}
}

func TestProcActions_RunOnOnePlatform(t *testing.T) {
	fake := &fakeRunner{}
	engine := control.New(fake, nil)
	engine.Resolve = flipping()
	cs := connect(t, engine)

	for i := 0; i < 3; i++ {
		res := callTool(t, cs, "proc_actions", map[string]any{"ids": []string{"lock", "sleep"}})
		require.False(t, res.IsError, resultText(res))
	}

	calls := fake.Calls()
	require.Len(t, calls, 6)
	for i := 0; i < len(calls); i += 2 {
		var kind platform.Kind
		for _, k := range []platform.Kind{platform.Linux, platform.MacOS, platform.Windows} {
			if lock, _ := actions.ByID(k, "lock"); lock.Command == calls[i][2] {
				kind = k
			}
		}
		require.True(t, kind.Supported(), "lock command %q matches no platform", calls[i][2])
		sleep, _ := actions.ByID(kind, "sleep")
		assert.Equal(t, command.Shell(kind, calls[i][2]).Argv(), calls[i])
		assert.Equal(t, command.Shell(kind, sleep.Command).Argv(), calls[i+1])
	}
}

// --- proc_inspect ---

func TestProcInspect_InvalidRunID(t *testing.T) {
	cs := setup(t, &fakeRunner{}, kindPtr(platform.Linux))
	res := callTool(t, cs, "proc_inspect", map[string]any{
		"run_id": "nonexistent-id",
		"stream": "stdout",
	})
	assert.True(t, res.IsError)
}

func TestProcInspect_MissingStream(t *testing.T) {
	cs := setup(t, &fakeRunner{}, kindPtr(platform.Linux))
	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "proc_inspect",
		Arguments: map[string]any{"run_id": "some-id"},
	})
	assert.Error(t, err)
}

func TestProcInspect_AfterLongRun(t *testing.T) {
	var out strings.Builder
	for i := 1; i <= 100; i++ {
		fmt.Fprintf(&out, "line %d\n", i)
	}
	fake := &fakeRunner{result: runner.Result{Stdout: []byte(out.String())}}
	cs := setup(t, fake, kindPtr(platform.Linux))

	runText := resultText(callTool(t, cs, "proc_run", map[string]any{"command": "seq 100"}))
	assert.Contains(t, runText, "60 more lines")
	assert.NotContains(t, runText, "line 100")

	runID := runIDOf(t, runText)
	res := callTool(t, cs, "proc_inspect", map[string]any{"run_id": runID, "stream": "stdout"})
	text := resultText(res)
	require.False(t, res.IsError, text)
	assert.Contains(t, text, "Run: "+runID+" (run)")
	assert.Contains(t, text, "line 100")

	res = callTool(t, cs, "proc_inspect", map[string]any{"run_id": runID, "stream": "stderr"})
	assert.Contains(t, resultText(res), "stderr: (empty)")

	res = callTool(t, cs, "proc_inspect", map[string]any{"run_id": runID, "stream": "stdin"})
	assert.True(t, res.IsError)
}

// --- proc_templates / proc_actions ---

func TestProcTemplates(t *testing.T) {
	cs := setup(t, &fakeRunner{}, kindPtr(platform.Linux))
	text := resultText(callTool(t, cs, "proc_templates", nil))
	assert.Contains(t, text, "Platform: linux")
	assert.Contains(t, text, "sleep [system]")
	assert.Contains(t, text, "systemctl suspend")
	assert.NotContains(t, text, "Lint:")

	text = resultText(callTool(t, cs, "proc_templates", map[string]any{"category": "web"}))
	assert.Contains(t, text, "open-youtube")
	assert.NotContains(t, text, "sleep [system]")

	res := callTool(t, cs, "proc_templates", map[string]any{"category": "games"})
	assert.True(t, res.IsError)
}

func TestProcActions_RunsInOrder(t *testing.T) {
	fake := &fakeRunner{}
	cs := setup(t, fake, kindPtr(platform.Linux))
	res := callTool(t, cs, "proc_actions", map[string]any{"ids": []string{"open-gmail", "open-youtube"}})
	text := resultText(res)
	require.False(t, res.IsError, text)
	assert.Contains(t, text, "Actions: 2/2 ran, 0 failed")

	gmail, _ := actions.ByID(platform.Linux, "open-gmail")
	youtube, _ := actions.ByID(platform.Linux, "open-youtube")
	require.Len(t, fake.Calls(), 2)
	assert.Equal(t, gmail.Command, fake.Calls()[0][2])
	assert.Equal(t, youtube.Command, fake.Calls()[1][2])
}

func TestProcActions_UnknownID(t *testing.T) {
	fake := &fakeRunner{}
	cs := setup(t, fake, kindPtr(platform.Linux))
	res := callTool(t, cs, "proc_actions", map[string]any{"ids": []string{"lock", "teleport"}})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "teleport")
	assert.Empty(t, fake.Calls(), "nothing runs when an ID is unknown")
}

func TestProcActions_FailureDoesNotStopBatch(t *testing.T) {
	fake := &fakeRunner{result: runner.Result{ExitCode: 2}}
	cs := setup(t, fake, kindPtr(platform.Linux))
	res := callTool(t, cs, "proc_actions", map[string]any{"ids": []string{"lock", "sleep"}})
	text := resultText(res)
	assert.True(t, res.IsError)
	assert.Contains(t, text, "Actions: 2/2 ran, 2 failed")
	assert.Contains(t, text, "lock: exit 2")
	assert.Len(t, fake.Calls(), 2)
}

// --- presets ---

func TestProcPresets_NotConfigured(t *testing.T) {
	cs := setup(t, &fakeRunner{}, kindPtr(platform.Linux))
	assert.True(t, callTool(t, cs, "proc_presets", nil).IsError)
	assert.True(t, callTool(t, cs, "proc_preset_run", map[string]any{"id": "x"}).IsError)
}

func TestProcPresets_ListAndRun(t *testing.T) {
	store := preset.NewFileStore(filepath.Join(t.TempDir(), "presets.yaml"))
	p := preset.New("Night", "wind down", 10*time.Minute, []actions.Action{
		{ID: "a", Name: "A", Command: "echo a", Enabled: true},
		{ID: "b", Name: "B", Command: "echo b", Enabled: false},
		{ID: "c", Name: "C", Command: "echo c", Enabled: true},
	})
	require.NoError(t, store.Save(p))

	fake := &fakeRunner{}
	cs := setup(t, fake, kindPtr(platform.Linux), WithPresets(store))

	text := resultText(callTool(t, cs, "proc_presets", nil))
	assert.Contains(t, text, p.ID)
	assert.Contains(t, text, "2/3 actions enabled, countdown 10m0s")

	res := callTool(t, cs, "proc_preset_run", map[string]any{"id": p.ID})
	text = resultText(res)
	require.False(t, res.IsError, text)
	assert.Contains(t, text, "Actions: 2/2 ran, 0 failed")
	require.Len(t, fake.Calls(), 2)
	assert.Equal(t, "echo a", fake.Calls()[0][2])
	assert.Equal(t, "echo c", fake.Calls()[1][2])

	res = callTool(t, cs, "proc_preset_run", map[string]any{"id": "preset-missing"})
	assert.True(t, res.IsError)
}

// --- proc_platform ---

func TestProcPlatform(t *testing.T) {
	cs := setup(t, &fakeRunner{}, kindPtr(platform.Windows))
	text := resultText(callTool(t, cs, "proc_platform", nil))
	assert.Contains(t, text, "Platform: windows")
	assert.Contains(t, text, "Shell: cmd /C")

	cs = setup(t, &fakeRunner{}, kindPtr(platform.Unsupported))
	text = resultText(callTool(t, cs, "proc_platform", nil))
	assert.Contains(t, text, "Supported: no")
}
