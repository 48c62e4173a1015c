package structs

import (
	"strconv"

	"tradeauto/models"
)

// Account is the venue's account payload; monetary fields arrive as strings.
type Account struct {
	BuyingPower   string `json:"buying_power"`
	Cash          string `json:"cash"`
	DaytradeCount int    `json:"daytrade_count"`
	Status        string `json:"status"`
}

func (a *Account) BuyingPowerValue() float64 {
	v, _ := strconv.ParseFloat(a.BuyingPower, 64)

	return v
}

func (a *Account) CashValue() float64 {
	v, _ := strconv.ParseFloat(a.Cash, 64)

	return v
}

type Position struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	AvgEntryPrice string `json:"avg_entry_price"`
	MarketValue   string `json:"market_value"`
	UnrealizedPL  string `json:"unrealized_pl"`
}

type Quote struct {
	Quote struct {
		AskPrice float64 `json:"ap"`
		BidPrice float64 `json:"bp"`
	} `json:"quote"`
}

type ProtectiveLeg struct {
	LimitPrice string `json:"limit_price,omitempty"`
	StopPrice  string `json:"stop_price,omitempty"`
}

// OrderRequest is the order placement body. TakeProfit/StopLoss are only
// set for bracket-class orders.
type OrderRequest struct {
	Symbol      string         `json:"symbol"`
	Qty         int            `json:"qty"`
	Side        string         `json:"side"`
	Type        string         `json:"type"`
	TimeInForce string         `json:"time_in_force"`
	LimitPrice  string         `json:"limit_price,omitempty"`
	StopPrice   string         `json:"stop_price,omitempty"`
	OrderClass  string         `json:"order_class,omitempty"`
	TakeProfit  *ProtectiveLeg `json:"take_profit,omitempty"`
	StopLoss    *ProtectiveLeg `json:"stop_loss,omitempty"`
}

// OrderOpts carries the optional protective prices for one placement.
// Zero means "no such leg".
type OrderOpts struct {
	StopLossPrice   float64
	TakeProfitPrice float64
}

// PlacedOrder is the primary order plus whatever protective legs could be
// placed. A failed leg lands in LegErrors without failing the primary.
type PlacedOrder struct {
	Primary   *models.Order
	Legs      []models.Order
	LegErrors []string
}
