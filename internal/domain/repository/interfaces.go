package repository

import (
	"context"

	"darkflow/internal/domain/models"
)

// EventStream is one live transport (WebSocket or SSE) to the upstream feed.
type EventStream interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.FlowEvent, <-chan error)
	Close() error
	IsConnected() bool
	Transport() Transport
}

// Upstream is the typed REST surface of the dark-flow backend.
type Upstream interface {
	UIConfig(ctx context.Context) (models.UIConfig, error)
	Flows(ctx context.Context, limit int, asset string, minUSD float64) ([]models.WhaleTransfer, error)
	FlowState(ctx context.Context) ([]models.FlowState, error)
	MarketPrices(ctx context.Context) ([]models.MarketPrice, error)
	Alerts(ctx context.Context, limit int, severity string) ([]models.Alert, error)
	AlgoFingerprint(ctx context.Context, symbol string) (models.AlgoFingerprint, error)
	WalletProfile(ctx context.Context, address string) (models.WalletProfile, error)
}

// EventSink receives accepted feed events for fan-out (relay, notifier).
type EventSink interface {
	Publish(ev *models.FlowEvent)
}

// Metrics records gateway metrics.
type Metrics interface {
	RecordEvent(transport, eventType string)
	RecordError(kind string)
	RecordReconnect(transport string)
	RecordTransportSwitch(from, to string)
	RecordFeedDepth(n int)
	RecordRelayClients(n int)
	RecordLatency(op string, seconds float64)
	RecordUpstreamRequest(endpoint, outcome string)
}
