package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	SideBUY  = "BUY"
	SideSELL = "SELL"
)

// SignalEvent is a normalized trade instruction. It is built once per
// inbound request and never mutated afterwards; only its effects
// (guardrail records, execution logs) are persisted.
type SignalEvent struct {
	Symbol        string    `json:"symbol"`
	Action        string    `json:"action"`
	Qty           int       `json:"qty"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
	Confidence    float64   `json:"confidence"`
	Price         float64   `json:"price,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`

	StopLossPct   float64 `json:"stop_loss_pct,omitempty"`
	TakeProfitPct float64 `json:"take_profit_pct,omitempty"`
	DryRun        bool    `json:"dry_run,omitempty"`
}

// Validate reports whether the event can be executed. Invalid events are a
// skip, not an error: upstream webhook sources retry on non-2xx and must
// not be encouraged to hammer the endpoint.
func (e *SignalEvent) Validate() (string, bool) {
	if e.Symbol == "" {
		return "No symbol provided, skipping trade", false
	}

	if e.Action != SideBUY && e.Action != SideSELL {
		return "No valid action, skipping trade", false
	}

	if e.Qty <= 0 {
		return "Invalid quantity, skipping trade", false
	}

	return "", true
}

// Hash identifies the logical signal for debounce purposes. Timestamp is
// excluded so retried deliveries of the same signal collapse onto one key.
func (e *SignalEvent) Hash() string {
	raw := fmt.Sprintf("%s|%s|%d|%s",
		strings.ToUpper(e.Symbol),
		e.Action,
		e.Qty,
		e.Source,
	)

	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}
