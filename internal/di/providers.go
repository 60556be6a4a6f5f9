package di

import (
	"fmt"
	"time"

	"darkflow/internal/dashboard"
	"darkflow/internal/domain/repository"
	"darkflow/internal/handler/api"
	"darkflow/internal/live"
	mid "darkflow/internal/middleware"
	"darkflow/internal/relay"
	"darkflow/internal/service/alerts"
	"darkflow/internal/upstream"
	"darkflow/internal/usecase"
	"darkflow/pkg/cache"
	"darkflow/pkg/config"
	xhttp "darkflow/pkg/http"
	applogger "darkflow/pkg/logger"
	"darkflow/pkg/metrics"
	"darkflow/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	log, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}

// ProvideCollector attaches the warn/error aggregator used by the
// system endpoint.
func ProvideCollector(log *applogger.Logger) *applogger.ErrorCollector {
	return log.AddCollector(&applogger.CollectionConfig{
		Retention:  time.Hour,
		MaxEntries: 500,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache builds the view cache, layered over Redis when enabled.
func ProvideCache(cfg *config.Config) cache.Service {
	mem := cache.WithMemoryMaxSize(1024)
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(mem)
	}
	redisCache := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix("darkflow"),
	)
	return cache.NewLayeredCache(redisCache, mem)
}

// ProvideUpstream creates the typed REST client for the backend.
func ProvideUpstream(cfg *config.Config, m repository.Metrics) repository.Upstream {
	return upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, cfg.Upstream.Timeout, m)
}

// ProvideFeed creates the bounded live event feed.
func ProvideFeed(cfg *config.Config) *usecase.EventFeed {
	return usecase.NewEventFeed(cfg.Feed.Capacity)
}

// ProvideHub creates the browser relay.
func ProvideHub(log *applogger.Logger, m repository.Metrics) *relay.Hub {
	return relay.NewHub(log, m)
}

// ProvideNotifier creates the Telegram whale notifier. A missing token
// yields a nil notifier, which drops everything.
func ProvideNotifier(cfg *config.Config, log *applogger.Logger) (*alerts.Notifier, error) {
	return alerts.New(
		cfg.Alerts.TelegramToken,
		cfg.Alerts.TelegramChatID,
		cfg.Alerts.MinNotionalUSD,
		cfg.Alerts.Cooldown,
		log,
	)
}

// ProvideProcessor routes accepted events to the feed and sinks.
func ProvideProcessor(feed *usecase.EventFeed, hub *relay.Hub, notifier *alerts.Notifier, m repository.Metrics) *usecase.EventProcessor {
	return usecase.NewEventProcessor(feed, m, hub, notifier)
}

// ProvidePipeline builds the validate/throttle stage in front of the
// processor.
func ProvidePipeline(proc *usecase.EventProcessor, m repository.Metrics, cfg *config.Config) *mid.EventPipeline {
	return mid.NewEventPipeline(proc, m,
		mid.WithMaxEventsPerSec(cfg.Feed.MaxEventsPerSec),
		mid.WithBufferSize(cfg.Feed.BufferSize),
	)
}

// ProvideLiveClient creates the upstream connection loop.
func ProvideLiveClient(cfg *config.Config, pipe *mid.EventPipeline, log *applogger.Logger, m repository.Metrics) *live.Client {
	newWS := func() repository.EventStream {
		return live.NewWSStream(cfg.Upstream.WebSocketURL, cfg.Upstream.APIKey, cfg.Upstream.PingInterval)
	}
	newSSE := func() repository.EventStream {
		return live.NewSSEStream(cfg.Upstream.SSEURL, cfg.Upstream.APIKey)
	}
	return live.NewClient(newWS, newSSE, pipe, log, m,
		cfg.Upstream.ReconnectDelay, cfg.Upstream.MaxWSFailures,
		live.WithInitialTransport(repository.NormalizeTransport(cfg.Upstream.Transport)))
}

// ProvideViews creates the cached view aggregator.
func ProvideViews(up repository.Upstream, c cache.Service, cfg *config.Config, log *applogger.Logger, m repository.Metrics) *usecase.Views {
	ttl := usecase.ViewTTLs{
		FlowState:    cfg.Cache.ViewTTL.FlowState,
		MarketPrices: cfg.Cache.ViewTTL.MarketPrices,
		Fingerprint:  cfg.Cache.ViewTTL.Fingerprint,
		Alerts:       cfg.Cache.ViewTTL.Alerts,
		Wallets:      cfg.Cache.ViewTTL.Wallets,
	}
	return usecase.NewViews(up, c, ttl, log, m)
}

// ProvideRefresher creates the periodic snapshot builder.
func ProvideRefresher(views *usecase.Views, cfg *config.Config, log *applogger.Logger) *usecase.Refresher {
	return usecase.NewRefresher(views, cfg.Feed.RefreshInterval, log)
}

// ProvideHandlers assembles every route-registering handler.
func ProvideHandlers(
	cfg *config.Config,
	log *applogger.Logger,
	views *usecase.Views,
	feed *usecase.EventFeed,
	client *live.Client,
	hub *relay.Hub,
	collector *applogger.ErrorCollector,
) []xhttp.Handler {
	dash := api.NewDashboardHandler(log, views, feed, client, hub, collector,
		cfg.Environment, cfg.Upstream.BaseURL)
	frontend := dashboard.NewFrontend()
	return []xhttp.Handler{dash, frontend, hub}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	client *live.Client,
	pipe *mid.EventPipeline,
	refresher *usecase.Refresher,
	hub *relay.Hub,
	c cache.Service,
	handlers []xhttp.Handler,
) *server.App {
	return server.New(cfg, log, client, pipe, refresher, hub, c, handlers)
}
