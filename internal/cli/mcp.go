package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/deixis/procbridge/internal/actions"
	procmcp "github.com/deixis/procbridge/internal/mcp"
	"github.com/deixis/procbridge/internal/preset"
	"github.com/deixis/procbridge/internal/report"
)

func newMCPCmd(a *app) *cobra.Command {
	var (
		httpAddr     string
		instructions bool
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server (stdio by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if instructions {
				fmt.Fprint(cmd.OutOrStdout(), procmcp.Instructions)
				return nil
			}
			return a.serve(cmd.Context(), httpAddr)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address (e.g. :9090) instead of stdio")
	cmd.Flags().BoolVar(&instructions, "instructions", false, "Print model instructions and exit")
	return cmd
}

func (a *app) serve(ctx context.Context, httpAddr string) error {
	presets := a.presets()
	disk := report.NewDiskStore()
	defer func() {
		if dir := disk.Dir(); dir != "" {
			_ = os.RemoveAll(dir)
		}
	}()
	store := report.NewLRUStore(a.cfg.HistorySize(), disk)
	server := procmcp.NewServer(a.engine, store, a.logger, procmcp.WithPresets(presets))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		if httpAddr != "" {
			return a.serveHTTP(gctx, server, httpAddr)
		}
		a.logger.Info("serving MCP on stdio", zap.Stringer("platform", a.engine.Platform()))
		return server.Run(gctx, &mcpsdk.StdioTransport{})
	})
	g.Go(func() error {
		a.watchPresets(gctx, presets)
		return nil
	})
	return g.Wait()
}

// watchPresets logs preset reloads until ctx is done. A watcher that cannot
// start is logged and abandoned; the tools read the file on every call.
func (a *app) watchPresets(ctx context.Context, presets *preset.FileStore) {
	if err := os.MkdirAll(filepath.Dir(presets.Path()), 0o755); err != nil {
		a.logger.Warn("preset watcher disabled", zap.Error(err))
		return
	}
	kind := a.engine.Platform()
	err := presets.Watch(ctx, a.logger, func(list []*preset.Preset) {
		a.logger.Info("presets reloaded", zap.String("path", presets.Path()), zap.Int("count", len(list)))
		for _, p := range list {
			for _, pr := range actions.Lint(kind, p.Actions) {
				a.logger.Warn("preset action does not parse",
					zap.String("preset", p.ID),
					zap.String("action", pr.ActionID),
					zap.String("problem", pr.Message),
				)
			}
		}
	})
	if err != nil {
		a.logger.Warn("preset watcher stopped", zap.Error(err))
	}
}

func (a *app) serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	a.logger.Info("listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server")
	}
	return nil
}
