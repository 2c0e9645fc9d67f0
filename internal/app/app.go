// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/statusdeck/statusdeck/internal/config"
	"github.com/statusdeck/statusdeck/internal/incidents"
	"github.com/statusdeck/statusdeck/internal/inventory"
	"github.com/statusdeck/statusdeck/internal/pkg/httputil"
	"github.com/statusdeck/statusdeck/internal/snapshot"
	"github.com/statusdeck/statusdeck/internal/status"
	"github.com/statusdeck/statusdeck/internal/version"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	server        *http.Server
	metricsServer *http.Server
	scheduler     *snapshot.Scheduler
	schedulerStop context.CancelFunc
}

// New creates a new application instance. Construction is the only place a
// status poll can fail: once the controller exists, polls always produce a
// snapshot.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)
	slog.SetDefault(logger)

	probeClient := status.NewClient(status.ClientConfig{
		UserAgent:         cfg.Poll.UserAgent,
		RequestsPerSecond: cfg.Poll.RequestsPerSecond,
		Timeout:           cfg.Poll.Timeout,
	})

	// Seed from wall clock: fallback content should vary between process
	// runs but stays deterministic within tests, which pass a fixed seed.
	controller, err := status.NewController(status.ControllerConfig{
		Timeout:        cfg.Poll.Timeout,
		WorkerHeadroom: cfg.Poll.WorkerHeadroom,
		Seed:           uint64(time.Now().UnixNano()),
	}, status.DefaultRegistry(probeClient, time.Now, uint64(time.Now().UnixNano())), time.Now)
	if err != nil {
		return nil, fmt.Errorf("create fan-out controller: %w", err)
	}

	snapshotStore := snapshot.NewStore()
	scheduler := snapshot.NewScheduler(snapshot.SchedulerConfig{
		Interval:     cfg.Snapshots.Interval,
		PollDeadline: cfg.Snapshots.PollDeadline,
		Retention:    cfg.Snapshots.Retention,
	}, controller, snapshotStore)

	incidentRepo := incidents.NewRepository()
	inventoryStore := inventory.NewStore()

	app := &App{
		config:    cfg,
		logger:    logger,
		scheduler: scheduler,
	}

	router := app.setupRouter(controller, snapshotStore, incidentRepo, inventoryStore)

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the scheduler and the HTTP servers.
func (a *App) Run() error {
	schedulerCtx, cancel := context.WithCancel(context.Background())
	a.schedulerStop = cancel
	a.scheduler.Start(schedulerCtx)

	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	if a.schedulerStop != nil {
		a.schedulerStop()
	}
	a.scheduler.Stop()

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	return errors.Join(errs...)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// Scheduler returns the snapshot scheduler instance.
// Used in tests to drive ticks synchronously.
func (a *App) Scheduler() *snapshot.Scheduler {
	return a.scheduler
}

func (a *App) setupRouter(
	controller *status.Controller,
	snapshotStore *snapshot.Store,
	incidentRepo *incidents.Repository,
	inventoryStore *inventory.Store,
) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.healthzHandler)
	r.Get("/version", a.versionHandler)

	statusHandler := status.NewHandler(controller)
	snapshotHandler := snapshot.NewHandler(snapshotStore, a.config.Snapshots.Retention)
	incidentsHandler := incidents.NewHandler(incidentRepo)
	inventoryHandler := inventory.NewHandler(inventoryStore)

	r.Route("/api/v1", func(r chi.Router) {
		statusHandler.RegisterRoutes(r)
		snapshotHandler.RegisterRoutes(r)
		incidentsHandler.RegisterRoutes(r)
		inventoryHandler.RegisterRoutes(r)
	})

	return r
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
