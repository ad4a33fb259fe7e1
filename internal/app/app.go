// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garyellow/vkbot-go/internal/bot"
	"github.com/garyellow/vkbot-go/internal/buildinfo"
	"github.com/garyellow/vkbot-go/internal/config"
	"github.com/garyellow/vkbot-go/internal/logger"
	"github.com/garyellow/vkbot-go/internal/metrics"
	"github.com/garyellow/vkbot-go/internal/modules/demo"
	"github.com/garyellow/vkbot-go/internal/sentry"
	"github.com/garyellow/vkbot-go/internal/storage"
	"github.com/garyellow/vkbot-go/internal/vkapi"
	"github.com/garyellow/vkbot-go/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// CallbackPath is where the Callback API server posts events.
const CallbackPath = "/callback"

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	db             *storage.DB
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	vk             *vkapi.Client
	dispatcher     *bot.Dispatcher
	webhookHandler *webhook.Handler
	server         *http.Server
}

// Initialize creates and initializes a new application with all dependencies.
// Handler registration errors abort startup.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "vkbot-go").WithField("version", buildinfo.Release())
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context() calls go through ContextHandler too.
	slog.SetDefault(log.Logger)

	log.WithField("group_id", cfg.GroupID).Info("Initializing application...")
	if log.RemoteEnabled() {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Release(),
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Error tracking enabled")
	}

	db, err := storage.New(ctx, cfg.SQLitePath(), cfg.DedupTTL)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).WithField("dedup_ttl", cfg.DedupTTL).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)
	if log.RemoteEnabled() {
		m.RegisterLogDrops(log.DroppedRemote)
	}

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &Application{cfg: cfg, logger: log, db: db, metrics: m, registry: registry}
	if err := app.wire(); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("Initialization complete")
	return app, nil
}

// wire builds the bot core and the HTTP surface on top of the
// infrastructure created by Initialize.
func (a *Application) wire() error {
	cfg := a.cfg

	vk, err := vkapi.New(vkapi.Config{
		BaseURL:      cfg.APIBaseURL,
		Version:      cfg.APIVersion,
		AccessToken:  cfg.AccessToken,
		Timeout:      cfg.APITimeout,
		MaxRetries:   cfg.APIMaxRetries,
		RetryWait:    config.VKAPIRetryWait,
		RetryMaxWait: config.VKAPIRetryMaxWait,
		Logger:       a.logger,
		Metrics:      a.metrics,
	})
	if err != nil {
		return fmt.Errorf("vk api: %w", err)
	}

	registry := bot.NewRegistry(bot.WithCommandPrefix(cfg.CommandPrefix))
	demoHandler, err := demo.NewHandler(a.logger, cfg.CommandPrefix)
	if err != nil {
		return fmt.Errorf("handlers: %w", err)
	}
	if err := demoHandler.Register(registry); err != nil {
		return fmt.Errorf("handlers: %w", err)
	}

	dispatcher, err := bot.NewDispatcher(bot.DispatcherConfig{
		Registry: registry,
		Identity: bot.Identity{
			GroupID:           cfg.GroupID,
			Secret:            cfg.Secret,
			ConfirmationToken: cfg.ConfirmationToken,
		},
		Logger:  a.logger,
		Metrics: a.metrics,
	})
	if err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}
	a.logger.WithField("handlers", registry.Len()).
		WithField("command_prefix", cfg.CommandPrefix).
		WithField("secret_check", cfg.Secret != "").
		Info("Handlers registered")

	webhookHandler, err := webhook.NewHandler(dispatcher, vk, a.logger,
		webhook.WithTimeout(cfg.WebhookTimeout),
		webhook.WithEventStore(a.db),
		webhook.WithMetrics(a.metrics),
	)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}

	a.vk = vk
	a.dispatcher = dispatcher
	a.webhookHandler = webhookHandler
	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router(),
		ReadHeaderTimeout: config.WebhookHTTPRead,
		ReadTimeout:       config.WebhookHTTPRead,
		WriteTimeout:      config.WebhookHTTPWrite,
		IdleTimeout:       config.WebhookHTTPIdle,
	}
	return nil
}

// Run starts the HTTP server and background jobs and blocks until ctx is
// canceled, SIGINT/SIGTERM arrives or the server fails.
//
// Shutdown order matters: the HTTP server and background jobs stop first,
// then in-flight callbacks drain, and only then is the database closed.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.serve)
	g.Go(func() error {
		a.dedupCleanup(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutdown requested, stopping HTTP server...")
		return a.stopServer()
	})

	err := g.Wait()
	a.shutdown()
	return err
}

// serve runs the HTTP server until it is shut down.
func (a *Application) serve() error {
	a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (a *Application) stopServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// shutdown releases resources after the server and jobs have stopped.
func (a *Application) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Waiting for in-flight callbacks...")
	if err := a.webhookHandler.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	if deadline, ok := ctx.Deadline(); ok {
		sentry.Flush(time.Until(deadline))
	}

	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}
}
