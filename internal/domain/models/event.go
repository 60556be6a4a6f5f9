package models

import "time"

// Event types emitted by the upstream feed.
const (
	EventDarkFlow      = "dark_flow"
	EventWhaleTransfer = "whale_transfer"
	EventAlgoSignal    = "algo_signal"
	EventAlert         = "alert"
)

// FlowEvent is one entry of the live event feed. The upstream backend owns
// the schema; unknown fields land in Metadata.
type FlowEvent struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Symbol      string                 `json:"symbol"`
	Exchange    string                 `json:"exchange,omitempty"`
	Side        string                 `json:"side,omitempty"` // "buy" | "sell"
	Price       float64                `json:"price,omitempty"`
	Quantity    float64                `json:"quantity,omitempty"`
	NotionalUSD float64                `json:"notional_usd,omitempty"`
	Wallet      string                 `json:"wallet,omitempty"`
	TxHash      string                 `json:"tx_hash,omitempty"`
	Confidence  float64                `json:"confidence,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// IsWhale reports whether the event is a whale transfer above the threshold.
func (e *FlowEvent) IsWhale(minUSD float64) bool {
	return e.Type == EventWhaleTransfer && e.NotionalUSD >= minUSD
}
