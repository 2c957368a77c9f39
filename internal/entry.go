// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/organizer/internal/api"
	"github.com/starford/organizer/internal/inbox"
	"github.com/starford/organizer/internal/mcpserver"
	"github.com/starford/organizer/internal/navigation"
	"github.com/starford/organizer/internal/organizer"
	"github.com/starford/organizer/internal/sse"
	"github.com/starford/organizer/internal/store"
)

// runtime holds the pieces shared by every command.
type runtime struct {
	cfg     *Config
	version string
	logger  *slog.Logger
	db      *store.DB
	svc     *organizer.Service
}

// setup applies opts, builds the logger (writing to logOut) and opens the store.
func setup(opts []Option, logOut io.Writer) (*runtime, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("inbox_enabled", cfg.Inbox.Enabled),
		slog.String("inbox_path", cfg.Inbox.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		version: app.version,
		logger:  logger,
		db:      db,
		svc:     organizer.NewService(db, logger),
	}, nil
}

func (rt *runtime) importer() (*inbox.Importer, error) {
	dir, err := inbox.NewDir(rt.cfg.Inbox.Path)
	if err != nil {
		return nil, fmt.Errorf("init inbox: %w", err)
	}
	return inbox.NewImporter(dir, rt.db, rt.svc, rt.logger), nil
}

// Run starts the HTTP server (and the inbox watcher when enabled) and blocks
// until ctx is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.db.Close()
	cfg, logger := rt.cfg, rt.logger

	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()
	rt.svc.SetNotifier(broker)

	sessions := navigation.NewSessions()
	apiRouter := api.NewRouter(rt.svc, sessions, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := rt.db.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Inbox.Enabled {
		im, err := rt.importer()
		if err != nil {
			return err
		}
		g.Go(func() error {
			return im.Watch(gCtx, cfg.Inbox.Debounce, func(rep inbox.Report) {
				if rep.Created+rep.Updated+rep.Forgotten > 0 {
					broker.Publish(sse.Event{Type: "inbox.synced", Data: rep})
				}
			})
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		// SSE handlers only return once the broker closes their channels.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup context so background workers stop.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio. Logs go to stderr because stdout
// carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	srv := mcpserver.New(rt.svc, rt.version)
	rt.logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

// RunImport performs a single inbox sync and reports what changed.
func RunImport(ctx context.Context, opts ...Option) (inbox.Report, error) {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return inbox.Report{}, err
	}
	defer rt.db.Close()

	im, err := rt.importer()
	if err != nil {
		return inbox.Report{}, err
	}
	rep, err := im.Sync(ctx)
	if err != nil {
		return rep, fmt.Errorf("inbox sync: %w", err)
	}
	rt.logger.Info("Import finished",
		slog.Int("created", rep.Created),
		slog.Int("updated", rep.Updated),
		slog.Int("unchanged", rep.Unchanged),
		slog.Int("skipped", rep.Skipped),
		slog.Int("forgotten", rep.Forgotten),
		slog.Int("failed", rep.Failed))
	return rep, nil
}
