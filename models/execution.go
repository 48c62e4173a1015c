package models

import "time"

// TradeResult is the outcome of one order attempt as reported to the
// caller. Broker-side failures land in Error; they are data, not errors.
type TradeResult struct {
	Action      string `json:"action"`
	Symbol      string `json:"symbol"`
	Qty         int    `json:"qty"`
	Success     bool   `json:"success"`
	OrderID     string `json:"order_id"`
	OrderStatus string `json:"order_status"`
	Error       string `json:"error,omitempty"`
}

type TradeSummary struct {
	TotalOrders      int `json:"total_orders"`
	SuccessfulOrders int `json:"successful_orders"`
	FailedOrders     int `json:"failed_orders"`
}

type TradeResults struct {
	Trades  []TradeResult `json:"trades"`
	Summary TradeSummary  `json:"summary"`
}

// Summarize recomputes the summary from the trades slice.
func (r *TradeResults) Summarize() {
	r.Summary = TradeSummary{TotalOrders: len(r.Trades)}

	for _, t := range r.Trades {
		if t.Success {
			r.Summary.SuccessfulOrders++
		} else {
			r.Summary.FailedOrders++
		}
	}
}

// ExecutionLog is the write-once audit record for one trade attempt,
// successful or skipped. Best-effort only; the broker's own order list
// stays authoritative.
type ExecutionLog struct {
	Key          string       `json:"key"`
	Timestamp    time.Time    `json:"timestamp"`
	WebhookData  SignalEvent  `json:"webhook_data"`
	TradeResults TradeResults `json:"trade_results"`
	Outcome      string       `json:"outcome"`
}
