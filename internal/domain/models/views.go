package models

import "time"

// FlowState is the backend's aggregate dark-flow read per symbol.
type FlowState struct {
	Symbol       string    `json:"symbol"`
	Intensity    float64   `json:"intensity"`     // 0..1 inferred institutional activity
	BuyPressure  float64   `json:"buy_pressure"`  // 0..1
	SellPressure float64   `json:"sell_pressure"` // 0..1
	Regime       string    `json:"regime"`        // "accumulation", "distribution", "neutral"
	UpdatedAt    time.Time `json:"updated_at"`
}

// MarketPrice is a spot price row for the ticker strip.
type MarketPrice struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change24h float64   `json:"change_24h"` // percent
	Volume24h float64   `json:"volume_24h"` // USD
	UpdatedAt time.Time `json:"updated_at"`
}

// AlgoFingerprint is the backend's frequency-domain classification of
// trading-pattern timing; rendered, never computed here.
type AlgoFingerprint struct {
	Symbol         string    `json:"symbol"`
	Pattern        string    `json:"pattern"` // "twap", "iceberg", "sweep", "unknown"
	DominantPeriod float64   `json:"dominant_period_sec"`
	Strength       float64   `json:"strength"` // 0..1
	SampleWindow   string    `json:"sample_window,omitempty"`
	ClassifiedAt   time.Time `json:"classified_at"`
}

// WhaleTransfer is one large on-chain transfer from GET /flows.
type WhaleTransfer struct {
	ID        string    `json:"id"`
	Asset     string    `json:"asset"`
	Chain     string    `json:"chain,omitempty"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    float64   `json:"amount"`
	AmountUSD float64   `json:"amount_usd"`
	Direction string    `json:"direction,omitempty"` // "exchange_in" | "exchange_out"
	TxHash    string    `json:"tx_hash"`
	Timestamp time.Time `json:"timestamp"`
}

// WalletProfile is the wallet-intelligence view.
type WalletProfile struct {
	Address        string    `json:"address"`
	Label          string    `json:"label,omitempty"`
	Chain          string    `json:"chain,omitempty"`
	BalanceUSD     float64   `json:"balance_usd"`
	NetFlow7dUSD   float64   `json:"net_flow_7d_usd"`
	Tags           []string  `json:"tags,omitempty"`
	Counterparties []string  `json:"counterparties,omitempty"`
	LastActive     time.Time `json:"last_active"`
}

// Alert is a backend-evaluated alert row from GET /admin/alerts.
type Alert struct {
	ID          string    `json:"id"`
	Severity    string    `json:"severity"` // "info", "warning", "critical"
	Title       string    `json:"title"`
	Message     string    `json:"message,omitempty"`
	Symbol      string    `json:"symbol,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// UIConfig is the backend's GET /ui bootstrap payload.
type UIConfig struct {
	Symbols         []string `json:"symbols"`
	RefreshSeconds  int      `json:"refresh_seconds"`
	Features        []string `json:"features,omitempty"`
	DefaultCurrency string   `json:"default_currency,omitempty"`
}

// DashboardSnapshot is the composed analytics view served to the frontend.
type DashboardSnapshot struct {
	FlowState    []FlowState       `json:"flow_state"`
	Prices       []MarketPrice     `json:"prices"`
	Fingerprints []AlgoFingerprint `json:"fingerprints"`
	Alerts       []Alert           `json:"alerts"`
	Transfers    []WhaleTransfer   `json:"transfers"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Partial      bool              `json:"partial,omitempty"` // some upstream fetches degraded
}

// SystemStatus describes the gateway itself for the settings/system page.
type SystemStatus struct {
	Environment     string    `json:"environment"`
	Transport       string    `json:"transport"`
	Connected       bool      `json:"connected"`
	Failures        int       `json:"consecutive_failures"`
	FeedLength      int       `json:"feed_length"`
	FeedCapacity    int       `json:"feed_capacity"`
	RelayClients    int       `json:"relay_clients"`
	StartedAt       time.Time `json:"started_at"`
	LastEventAt     time.Time `json:"last_event_at,omitempty"`
	UpstreamBaseURL string    `json:"upstream_base_url"`
}
