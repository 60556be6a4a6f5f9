package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type EventsRequest struct {
	Limit  int     `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=50"`
	Type   string  `query:"type" json:"type" validate:"omitempty,oneof=dark_flow whale_transfer algo_signal alert"`
	Symbol string  `query:"symbol" json:"symbol" validate:"omitempty,max=20"`
	MinUSD float64 `query:"min_usd" json:"min_usd" validate:"gte=0"`
	Since  string  `query:"since" json:"since" validate:"omitempty,max=40"` // RFC3339 or unix seconds
}

type FlowsRequest struct {
	Limit  int     `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
	Asset  string  `query:"asset" json:"asset" validate:"omitempty,max=20"`
	MinUSD float64 `query:"min_usd" json:"min_usd" validate:"gte=0"`
}

type AlertsRequest struct {
	Limit    int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
	Severity string `query:"severity" json:"severity" validate:"omitempty,oneof=info warning critical"`
}

type FingerprintRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=20"`
}

type WalletRequest struct {
	Address string `param:"address" json:"address" validate:"required,min=8,max=128"`
}
