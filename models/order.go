package models

// Order mirrors the broker-side order entity. Quantity and price fields
// stay strings because the venue reports them that way.
type Order struct {
	ID            string  `json:"id"`
	ClientOrderID string  `json:"client_order_id"`
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Qty           string  `json:"qty"`
	Type          string  `json:"type"`
	TimeInForce   string  `json:"time_in_force"`
	LimitPrice    string  `json:"limit_price,omitempty"`
	StopPrice     string  `json:"stop_price,omitempty"`
	Status        string  `json:"status"`
	OrderClass    string  `json:"order_class,omitempty"`
	Legs          []Order `json:"legs,omitempty"`
}
