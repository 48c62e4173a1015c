package structs

// WebhookPayload covers the inbound body shapes the executor accepts: the
// generic JSON shape, and the provider shape where symbol/price live in a
// nested data array. Pointer fields distinguish "absent" from zero.
type WebhookPayload struct {
	Symbol        string         `json:"symbol"`
	Action        string         `json:"action"`
	Qty           *int           `json:"qty"`
	Source        string         `json:"source"`
	Timestamp     string         `json:"timestamp"`
	Price         float64        `json:"price"`
	Confidence    *float64       `json:"confidence"`
	CorrelationID string         `json:"correlation_id"`
	StopLossPct   float64        `json:"stop_loss_pct"`
	TakeProfitPct float64        `json:"take_profit_pct"`
	DryRun        bool           `json:"dry_run"`
	Data          []ProviderTick `json:"data"`
}

// ProviderTick is the nested element of the provider array format.
type ProviderTick struct {
	Symbol string  `json:"s"`
	Price  float64 `json:"p"`
	Volume float64 `json:"v"`
}
