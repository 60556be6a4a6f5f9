package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"darkflow/internal/live"
	mid "darkflow/internal/middleware"
	"darkflow/internal/relay"
	"darkflow/internal/usecase"
	"darkflow/pkg/cache"
	"darkflow/pkg/config"
	xhttp "darkflow/pkg/http"
	applogger "darkflow/pkg/logger"
)

// App encapsulates the entire gateway lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	client     *live.Client
	pipeline   *mid.EventPipeline
	refresher  *usecase.Refresher
	hub        *relay.Hub
	cache      cache.Service
	handlers   []xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	client *live.Client,
	pipeline *mid.EventPipeline,
	refresher *usecase.Refresher,
	hub *relay.Hub,
	c cache.Service,
	handlers []xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		client:    client,
		pipeline:  pipeline,
		refresher: refresher,
		hub:       hub,
		cache:     c,
		handlers:  handlers,
	}
}

// Run starts the gateway and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	a.httpServer = xhttp.NewServer(a.handlers, opts...)

	a.pipeline.Start(ctx)
	a.client.Start(ctx)
	a.log.Info("live client started",
		applogger.String("ws_url", a.cfg.Upstream.WebSocketURL),
		applogger.String("sse_url", a.cfg.Upstream.SSEURL))

	a.refresher.Start(ctx)
	a.log.Info("snapshot refresher started",
		applogger.Duration("interval", a.cfg.Feed.RefreshInterval))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all components.
func (a *App) shutdown(ctx context.Context) error {
	a.refresher.Stop()
	a.client.Stop()
	a.pipeline.Stop()
	a.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
