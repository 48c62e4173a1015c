package models

import "time"

// SymbolState is the per-symbol cooldown record kept in the state store.
type SymbolState struct {
	LastTradeTS time.Time `json:"last_trade_ts"`
}

// DailyCounter is the admitted-trades counter for one UTC calendar day.
type DailyCounter struct {
	Total int `json:"total"`
}
