// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
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
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/professor/internal/api"
	"github.com/starford/professor/internal/lecture"
	"github.com/starford/professor/internal/llm"
	"github.com/starford/professor/internal/mcpserver"
	"github.com/starford/professor/internal/metrics"
	"github.com/starford/professor/internal/refcheck"
	"github.com/starford/professor/internal/session"
	"github.com/starford/professor/internal/sse"
	"github.com/starford/professor/internal/trust"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logOutput == nil {
		app.logOutput = os.Stdout
	}
	return app, nil
}

func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// trustSet builds the trusted domain set, loading the configured file when
// there is one.
func (a *application) trustSet(logger *slog.Logger) (*trust.Set, error) {
	set := trust.Default()
	path := a.config.References.TrustedDomainsFile
	if path == "" {
		return set, nil
	}
	if err := set.LoadFile(path); err != nil {
		return nil, fmt.Errorf("load trusted domains: %w", err)
	}
	logger.Info("Trusted domains loaded", slog.String("path", path), slog.Int("count", set.Len()))
	return set, nil
}

// watchTrust keeps set in sync with the configured file until ctx is done.
func (a *application) watchTrust(ctx context.Context, set *trust.Set, logger *slog.Logger) error {
	path := a.config.References.TrustedDomainsFile
	if path == "" {
		return nil
	}
	return trust.Watch(ctx, set, path, logger, func(n int) {
		logger.Info("Trusted domains reloaded", slog.Int("count", n))
	})
}

func (a *application) newRefiner(set *trust.Set, logger *slog.Logger) (*refcheck.Refiner, *refcheck.Checker) {
	refs := a.config.References
	checker := refcheck.NewChecker(refs.CheckerConfig(), set, logger)
	return refcheck.NewRefiner(checker, refs.Thresholds(), refs.MaxAttempts, logger), checker
}

func (a *application) newGenerator(ctx context.Context, logger *slog.Logger) (llm.Generator, error) {
	if a.generator != nil {
		return a.generator, nil
	}
	cfg := a.config.LLM
	if cfg.UseMock() {
		logger.Warn("Using mock slide generator", slog.String("provider", cfg.Provider))
		return llm.Mock{}, nil
	}

	var client llm.Client
	switch cfg.Provider {
	case ProviderGemini:
		c, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		client = c
	default:
		client = llm.NewAnthropicClient(cfg.APIKey, cfg.Model)
	}
	logger.Info("Using slide generator", slog.String("provider", cfg.Provider))
	return llm.NewChat(client, cfg.MaxTokens, logger), nil
}

// pinger reports whether a dependency is ready to serve.
type pinger interface {
	Ping() error
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// newRootRouter wires middleware, health checks, metrics and the API.
func newRootRouter(db pinger, apiRouter http.Handler, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	// Health check endpoints (unauthenticated).
	live := func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, `{"status":"ok"}`)
	}
	r.Get("/health", live)
	r.Get("/health/live", live)
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Ping(); err != nil {
			slog.Error("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, `{"status":"unavailable"}`)
			return
		}
		writeStatus(w, http.StatusOK, `{"status":"ok"}`)
	})
	r.Handle("/metrics", metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)
	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := session.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	defer db.Close()

	set, err := app.trustSet(logger)
	if err != nil {
		return err
	}
	refiner, _ := app.newRefiner(set, logger)

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	gen, err := app.newGenerator(ctx, logger)
	if err != nil {
		return err
	}
	svc := lecture.NewService(db, gen, refiner, broker, logger)
	apiRouter := api.NewRouter(svc, refiner, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRootRouter(db, apiRouter, cfg.App.HTTP.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload trusted domains when the file changes.
	g.Go(func() error {
		if err := app.watchTrust(gCtx, set, logger); err != nil {
			logger.Warn("trust watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		// SSE streams only end when their clients go away or the broker closes.
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

// errShutdown cancels the group so the trust watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the reference validation tools over MCP stdio. Logs go to
// stderr because stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger()

	set, err := app.trustSet(logger)
	if err != nil {
		return err
	}
	refiner, checker := app.newRefiner(set, logger)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := app.watchTrust(watchCtx, set, logger); err != nil {
			logger.Warn("trust watcher failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(refiner, checker, set).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// CheckReport is the output of CheckReferences.
type CheckReport struct {
	refcheck.Result
	Links []refcheck.Outcome `json:"links"`
}

// CheckReferences validates the links in markdown once and writes the report
// to out as indented JSON.
func CheckReferences(ctx context.Context, markdown string, out io.Writer, opts ...Option) (CheckReport, error) {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return CheckReport{}, err
	}
	logger := app.newLogger()

	set, err := app.trustSet(logger)
	if err != nil {
		return CheckReport{}, err
	}
	refiner, _ := app.newRefiner(set, logger)

	res, outcomes := refiner.Inspect(ctx, markdown)
	report := CheckReport{Result: res, Links: outcomes}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return report, fmt.Errorf("write report: %w", err)
	}
	return report, nil
}
