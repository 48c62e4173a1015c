package structs

const (
	ReasonDebounce         = "debounce"
	ReasonSymbolInterval   = "symbol_interval"
	ReasonDailyCap         = "daily_cap"
	ReasonLowConfidence    = "low_confidence"
	ReasonBuyingPower      = "insufficient_buying_power"
	ReasonStateUnavailable = "state_unavailable"
)

// Decision is the guardrail admission verdict. Skips are data the caller
// branches on, never errors.
type Decision struct {
	Allowed bool
	Reason  string
	Detail  string
}

func Admitted() Decision {
	return Decision{Allowed: true}
}

func Skipped(reason, detail string) Decision {
	return Decision{Reason: reason, Detail: detail}
}
