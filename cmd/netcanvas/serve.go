package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"netcanvas/internal/handler"
	"netcanvas/internal/hub"
	"netcanvas/internal/repository/sqlite"
	"netcanvas/internal/service"
	"netcanvas/internal/watcher"
)

func serveCmd(a *app) *cobra.Command {
	var (
		addr      string
		dbPath    string
		watchPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the interactive canvas web server",
		Long: `Serve the canvas UI, its JSON API and the /events render stream.

  netcanvas serve                         # listen on :3000
  netcanvas serve --addr 127.0.0.1:8080   # custom address
  netcanvas serve --watch graph.json      # load and follow a topology file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				a.cfg.Database.Path = dbPath
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Watch.Path = watchPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite snapshot database path (overrides config)")
	cmd.Flags().StringVar(&watchPath, "watch", "", "topology file to load and reload on change")

	return cmd
}

// serve runs the HTTP server until ctx is cancelled
func (a *app) serve(ctx context.Context) error {
	log := a.log
	log.Info("starting netcanvas server", "version", version)

	repo, err := sqlite.New(a.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	log.Info("database opened", "path", a.cfg.Database.Path)

	eventBus := service.NewEventBus()
	ws := a.workspace(eventBus, repo)

	sseHub := hub.New(log.With("component", "hub"))

	mux := http.NewServeMux()
	handler.NewCanvasHandler(ws, log.With("component", "http")).Register(mux)

	// SSE events endpoint
	mux.Handle("GET /events", sseHub)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Static files from embedded filesystem
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return fmt.Errorf("embedded web content: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(webContent)))

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  a.cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: a.cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  a.cfg.Server.IdleTimeout.Duration(),
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sseHub.Run(gctx)
		return nil
	})

	// Connect event bus to SSE hub. Forwarding is synchronous so no render
	// command is lost between the workspace and the hub.
	stopForward := eventBus.Forward(func(event service.Event) {
		sseHub.Broadcast(event)
	})
	defer stopForward()

	if path := a.cfg.Watch.Path; path != "" {
		g.Go(func() error {
			return a.watch(gctx, ws, path)
		})
	}

	g.Go(func() error {
		log.Info("server listening", "addr", a.cfg.Server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		return nil
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

// watch loads path now and again whenever it changes on disk. It returns
// when ctx is cancelled or the watcher fails.
func (a *app) watch(ctx context.Context, ws *service.Workspace, path string) error {
	log := a.log.With("component", "watcher")

	reload := func() {
		if err := ws.LoadFile(path); err != nil {
			log.Warn("failed to load watched topology", "path", path, "error", err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		reload()
	}

	w := watcher.New(path, reload, log).WithDebounce(a.cfg.Watch.Debounce.Duration())
	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	return nil
}
