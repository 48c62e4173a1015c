package usecasees

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"tradeauto/internal/controllers"
	"tradeauto/internal/usecasees/structs"
	"tradeauto/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	ordersUrlPath    = "/v2/orders"
	accountUrlPath   = "/v2/account"
	positionsUrlPath = "/v2/positions"
	quoteUrlPath     = "/v2/stocks/%s/quotes/latest"

	orderTypeMarket = "market"
	orderTypeLimit  = "limit"
	orderTypeStop   = "stop"

	timeInForceDay = "day"

	orderClassBracket = "bracket"
)

// brokerUseCase is the authenticated gateway to the trading venue. All
// requests ride the shared retrying client; a placement failure after
// retries is a normal, loggable outcome for the executor, not a fault.
type brokerUseCase struct {
	clientController controllers.ClientCtrl

	tradingURL string
	dataURL    string
	apiKey     string
	secretKey  string

	logger *logrus.Logger
}

func NewBrokerUseCase(
	client controllers.ClientCtrl,
	tradingURL string,
	dataURL string,
	apiKey string,
	secretKey string,
	logger *logrus.Logger,
) *brokerUseCase {
	return &brokerUseCase{
		clientController: client,
		tradingURL:       tradingURL,
		dataURL:          dataURL,
		apiKey:           apiKey,
		secretKey:        secretKey,
		logger:           logger,
	}
}

func (u *brokerUseCase) headers() map[string]string {
	return map[string]string{
		"APCA-API-KEY-ID":     u.apiKey,
		"APCA-API-SECRET-KEY": u.secretKey,
	}
}

// PlaceOrder places a market order for the signal, with protective orders
// derived from opts. Both a stop-loss and a take-profit yield one
// bracket-class order; a single protective price is placed as an
// independent order afterwards, and its failure does not fail the primary.
func (u *brokerUseCase) PlaceOrder(symbol, side string, qty int, opts structs.OrderOpts) (*structs.PlacedOrder, error) {
	req := structs.OrderRequest{
		Symbol:      symbol,
		Qty:         qty,
		Side:        strings.ToLower(side),
		Type:        orderTypeMarket,
		TimeInForce: timeInForceDay,
	}

	bracket := opts.StopLossPrice > 0 && opts.TakeProfitPrice > 0
	if bracket {
		req.OrderClass = orderClassBracket
		req.TakeProfit = &structs.ProtectiveLeg{LimitPrice: formatPrice(opts.TakeProfitPrice)}
		req.StopLoss = &structs.ProtectiveLeg{StopPrice: formatPrice(opts.StopLossPrice)}
	}

	primary, err := u.submitOrder(&req)
	if err != nil {
		return nil, err
	}

	placed := &structs.PlacedOrder{Primary: primary}
	if bracket {
		return placed, nil
	}

	// Single protective price: place it as its own order on the opposite
	// side and tolerate failure.
	if opts.StopLossPrice > 0 {
		u.placeLeg(placed, &structs.OrderRequest{
			Symbol:      symbol,
			Qty:         qty,
			Side:        invertSide(side),
			Type:        orderTypeStop,
			TimeInForce: timeInForceDay,
			StopPrice:   formatPrice(opts.StopLossPrice),
		})
	}

	if opts.TakeProfitPrice > 0 {
		u.placeLeg(placed, &structs.OrderRequest{
			Symbol:      symbol,
			Qty:         qty,
			Side:        invertSide(side),
			Type:        orderTypeLimit,
			TimeInForce: timeInForceDay,
			LimitPrice:  formatPrice(opts.TakeProfitPrice),
		})
	}

	return placed, nil
}

func (u *brokerUseCase) placeLeg(placed *structs.PlacedOrder, req *structs.OrderRequest) {
	leg, err := u.submitOrder(req)
	if err != nil {
		u.logger.
			WithField("method", "placeLeg").
			WithError(err).
			Errorf("%s %s leg failed for %s", req.Side, req.Type, req.Symbol)

		placed.LegErrors = append(placed.LegErrors, fmt.Sprintf("%s %s: %s", req.Side, req.Type, err))

		return
	}

	placed.Legs = append(placed.Legs, *leg)
}

func (u *brokerUseCase) submitOrder(req *structs.OrderRequest) (*models.Order, error) {
	ordersURL, err := u.tradingEndpoint(ordersUrlPath)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	_, resp, err := u.clientController.Send(http.MethodPost, ordersURL, u.headers(), body)
	if err != nil {
		return nil, errors.Wrapf(err, "place %s %s order for %s", req.Side, req.Type, req.Symbol)
	}

	var order models.Order
	if err := json.Unmarshal(resp, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

func (u *brokerUseCase) GetAccount() (*structs.Account, error) {
	accountURL, err := u.tradingEndpoint(accountUrlPath)
	if err != nil {
		return nil, err
	}

	_, resp, err := u.clientController.Send(http.MethodGet, accountURL, u.headers(), nil)
	if err != nil {
		return nil, err
	}

	var account structs.Account
	if err := json.Unmarshal(resp, &account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (u *brokerUseCase) GetPositions() ([]structs.Position, error) {
	positionsURL, err := u.tradingEndpoint(positionsUrlPath)
	if err != nil {
		return nil, err
	}

	_, resp, err := u.clientController.Send(http.MethodGet, positionsURL, u.headers(), nil)
	if err != nil {
		return nil, err
	}

	var positions []structs.Position
	if err := json.Unmarshal(resp, &positions); err != nil {
		return nil, err
	}

	return positions, nil
}

func (u *brokerUseCase) GetOrders(status string, limit int) ([]models.Order, error) {
	ordersURL, err := u.tradingEndpoint(ordersUrlPath)
	if err != nil {
		return nil, err
	}

	q := ordersURL.Query()
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	ordersURL.RawQuery = q.Encode()

	_, resp, err := u.clientController.Send(http.MethodGet, ordersURL, u.headers(), nil)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := json.Unmarshal(resp, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetQuote fetches the latest quote, preferring the ask and falling back
// to the bid. Best-effort; callers treat 0 as "no price available".
func (u *brokerUseCase) GetQuote(symbol string) (float64, error) {
	quoteURL, err := url.Parse(u.dataURL)
	if err != nil {
		return 0, err
	}

	quoteURL.Path = path.Join(quoteURL.Path, fmt.Sprintf(quoteUrlPath, symbol))

	_, resp, err := u.clientController.Send(http.MethodGet, quoteURL, u.headers(), nil)
	if err != nil {
		return 0, err
	}

	var quote structs.Quote
	if err := json.Unmarshal(resp, &quote); err != nil {
		return 0, err
	}

	price := quote.Quote.AskPrice
	if price == 0 {
		price = quote.Quote.BidPrice
	}

	return price, nil
}

func (u *brokerUseCase) tradingEndpoint(p string) (*url.URL, error) {
	baseURL, err := url.Parse(u.tradingURL)
	if err != nil {
		return nil, err
	}

	baseURL.Path = path.Join(baseURL.Path, p)

	return baseURL, nil
}

// ProtectivePrices derives the stop-loss and take-profit prices from the
// reference price. On a BUY the stop sits below and the target above; on
// a SELL the inequalities invert. A zero pct disables that leg.
func ProtectivePrices(side string, refPrice, stopLossPct, takeProfitPct float64) structs.OrderOpts {
	var opts structs.OrderOpts

	if refPrice <= 0 {
		return opts
	}

	direction := 1.0
	if side == models.SideSELL {
		direction = -1.0
	}

	if stopLossPct > 0 {
		opts.StopLossPrice = roundPrice(refPrice * (1 - direction*stopLossPct/100))
	}

	if takeProfitPct > 0 {
		opts.TakeProfitPrice = roundPrice(refPrice * (1 + direction*takeProfitPct/100))
	}

	return opts
}

func invertSide(side string) string {
	if side == models.SideBUY {
		return strings.ToLower(models.SideSELL)
	}

	return strings.ToLower(models.SideBUY)
}

func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
