package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"darkflow/internal/domain/models"
	"darkflow/internal/live"
	"darkflow/internal/relay"
	"darkflow/internal/usecase"
	xhttp "darkflow/pkg/http"
	xlogger "darkflow/pkg/logger"
	"darkflow/pkg/util"
)

// DashboardHandler serves the JSON view API consumed by the embedded
// frontend.
type DashboardHandler struct {
	logger      *xlogger.Logger
	views       *usecase.Views
	feed        *usecase.EventFeed
	client      *live.Client
	hub         *relay.Hub
	collector   *xlogger.ErrorCollector
	environment string
	upstreamURL string
	startedAt   time.Time
}

func NewDashboardHandler(
	logger *xlogger.Logger,
	views *usecase.Views,
	feed *usecase.EventFeed,
	client *live.Client,
	hub *relay.Hub,
	collector *xlogger.ErrorCollector,
	environment string,
	upstreamURL string,
) *DashboardHandler {
	return &DashboardHandler{
		logger:      logger,
		views:       views,
		feed:        feed,
		client:      client,
		hub:         hub,
		collector:   collector,
		environment: environment,
		upstreamURL: upstreamURL,
		startedAt:   time.Now().UTC(),
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/events", h.Events)
	g.GET("/flows", h.Flows)
	g.GET("/flow_state", h.FlowState)
	g.GET("/market_prices", h.MarketPrices)
	g.GET("/alerts", h.Alerts)
	g.GET("/algo_fingerprint", h.Fingerprint)
	g.GET("/wallets/:address", h.Wallet)
	g.GET("/snapshot", h.Snapshot)
	g.GET("/ui", h.UIConfig)
	g.GET("/system", h.System)
}

func (h *DashboardHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Events returns the in-memory live feed, newest first.
func (h *DashboardHandler) Events(c echo.Context) error {
	req := &models.EventsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	events := h.feed.List(usecase.FeedFilter{
		Limit:  req.Limit,
		Type:   req.Type,
		Symbol: req.Symbol,
		MinUSD: req.MinUSD,
		Since:  util.ParseTimeDefault(req.Since, time.Time{}),
	})
	return xhttp.ListResponse(c, events, int64(len(events)))
}

func (h *DashboardHandler) Flows(c echo.Context) error {
	req := &models.FlowsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	flows, _ := h.views.Flows(c.Request().Context(), req.Limit, req.Asset, req.MinUSD)
	return xhttp.ListResponse(c, flows, int64(len(flows)))
}

func (h *DashboardHandler) FlowState(c echo.Context) error {
	states, _ := h.views.FlowState(c.Request().Context())
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, states)
}

func (h *DashboardHandler) MarketPrices(c echo.Context) error {
	prices, _ := h.views.MarketPrices(c.Request().Context())
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, prices)
}

func (h *DashboardHandler) Alerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	alerts, _ := h.views.Alerts(c.Request().Context(), req.Limit, req.Severity)
	return xhttp.ListResponse(c, alerts, int64(len(alerts)))
}

func (h *DashboardHandler) Fingerprint(c echo.Context) error {
	req := &models.FingerprintRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	fp, _ := h.views.Fingerprint(c.Request().Context(), req.Symbol)
	return xhttp.SuccessResponse(c, fp)
}

func (h *DashboardHandler) Wallet(c echo.Context) error {
	req := &models.WalletRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	profile, ok := h.views.Wallet(c.Request().Context(), req.Address)
	if !ok {
		h.logger.Debug("wallet lookup degraded", xlogger.String("address", req.Address))
	}
	return xhttp.SuccessResponse(c, profile)
}

// Snapshot returns the composed dashboard view built by the refresher.
func (h *DashboardHandler) Snapshot(c echo.Context) error {
	snap := h.views.Snapshot(c.Request().Context())
	return xhttp.SuccessResponse(c, snap)
}

func (h *DashboardHandler) UIConfig(c echo.Context) error {
	cfg, _ := h.views.UIConfig(c.Request().Context())
	return xhttp.SuccessResponse(c, cfg)
}

// System reports gateway health for the settings page, including
// recent aggregated errors.
func (h *DashboardHandler) System(c echo.Context) error {
	status := models.SystemStatus{
		Environment:     h.environment,
		Transport:       string(h.client.Transport()),
		Connected:       h.client.IsConnected(),
		Failures:        h.client.Failures(),
		FeedLength:      h.feed.Len(),
		FeedCapacity:    h.feed.Cap(),
		RelayClients:    h.hub.ClientCount(),
		StartedAt:       h.startedAt,
		LastEventAt:     h.feed.LastEventAt(),
		UpstreamBaseURL: h.upstreamURL,
	}
	resp := map[string]interface{}{"status": status}
	if h.collector != nil {
		resp["recent_errors"] = h.collector.Recent(20)
	}
	return xhttp.SuccessResponse(c, resp)
}
