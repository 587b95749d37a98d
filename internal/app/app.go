// Package app assembles the dashboard server: configuration, logging,
// the backend client, services, handlers and the HTTP router.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"purchdash/internal/alerts"
	"purchdash/internal/comments"
	"purchdash/internal/config"
	apierrors "purchdash/internal/errors"
	"purchdash/internal/infrastructure"
	"purchdash/internal/loader"
	custommw "purchdash/internal/middleware"
	"purchdash/internal/services"
	transporthttp "purchdash/internal/transport/http"
	"purchdash/internal/websocket"
)

// Version is stamped at build time.
var Version = "dev"

// Application holds the wired components for one server process.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Server *http.Server

	hub      *websocket.Hub
	comments *comments.Store
}

// New loads configuration, wires every component and builds the HTTP
// server. Nothing is listening yet; call Run.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig wires the application over an already-loaded config.
func NewWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	backend, err := loader.NewBackend(cfg.Backend.URL, cfg.Backend.Key)
	if err != nil {
		return nil, fmt.Errorf("connect backend: %w", err)
	}

	store, err := comments.Open(cfg.Comments.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open comment store: %w", err)
	}

	hub := websocket.NewHub(logger)

	dataLoader := loader.New(backend, logger)
	dashboard := services.NewDashboardService(dataLoader, cfg.Alerts, logger)
	notifier := alerts.NewNotifier(cfg.SMTP, logger)
	errorHandler := apierrors.NewErrorHandler(logger)

	app := &Application{
		Config:   cfg,
		Logger:   logger,
		hub:      hub,
		comments: store,
	}

	router := app.buildRouter(dashboard, notifier, backend, errorHandler)
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func (a *Application) buildRouter(dashboard *services.DashboardService, notifier *alerts.Notifier, backend *loader.Backend, errorHandler *apierrors.ErrorHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.CORS(custommw.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	rateLimiter := custommw.NewRateLimiter(
		a.Config.Security.RateLimitRPS,
		a.Config.Security.RateLimitBurst,
		a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimiter.Handler)
		r.Use(custommw.Timeout(a.Config.Server.WriteTimeout, a.Logger))

		r.Mount("/health", transporthttp.NewHealthHandler(Version).Routes())
		r.Mount("/auth", transporthttp.NewAuthHandler(backend, a.Logger, errorHandler).Routes())
		r.Mount("/dashboard", transporthttp.NewDashboardHandler(dashboard, a.hub, a.Logger, errorHandler).Routes())
		r.Mount("/alerts", transporthttp.NewAlertsHandler(dashboard, notifier, a.hub, a.Logger, errorHandler).Routes())
		r.Mount("/contracts", transporthttp.NewContractsHandler(dashboard, notifier, a.Logger, errorHandler).Routes())
		r.Mount("/comments", transporthttp.NewCommentsHandler(a.comments, a.hub, a.Logger, errorHandler).Routes())
		r.Mount("/export", transporthttp.NewExportHandler(dashboard, a.Logger, errorHandler).Routes())
	})

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWS(a.hub, w, req, a.Logger)
	})

	return r
}

// Run starts the server and blocks until shutdown completes. SIGINT and
// SIGTERM trigger a graceful stop bounded by the shutdown timeout.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.hub.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.Stop()
	})

	err := g.Wait()
	infrastructure.CloseLogFile()
	return err
}

// Stop shuts the server down gracefully and releases resources.
func (a *Application) Stop() error {
	a.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("server shutdown failed", slog.String("error", err.Error()))
		a.Server.Close()
	}
	a.hub.Stop()
	if err := a.comments.Close(); err != nil {
		a.Logger.Warn("comment store close failed", slog.String("error", err.Error()))
	}
	a.Logger.Info("shutdown complete")
	return nil
}
