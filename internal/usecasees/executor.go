package usecasees

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tradeauto/internal/controllers"
	"tradeauto/internal/repository"
	"tradeauto/internal/usecasees/structs"
	"tradeauto/models"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	HeaderSharedSecret = "X-Shared-Secret"
	HeaderSignature    = "X-Signature"

	sourceWebhook  = "webhook"
	sourceProvider = "finnhub"

	outcomeExecuted  = "executed"
	outcomeSimulated = "simulated"
	outcomeFailed    = "failed"
)

// ExecutorConfig carries the execution policy knobs.
type ExecutorConfig struct {
	// AutoExecute false means every admitted signal is simulated, never
	// sent to the broker.
	AutoExecute   bool
	MinConfidence float64
}

// executorUseCase handles one inbound signal end to end: normalize,
// authenticate, gate, place, record, report.
type executorUseCase struct {
	guardrail *guardrailUseCase
	broker    *brokerUseCase
	publisher *publisherUseCase

	cryptoController controllers.CryptoCtrl
	tgmController    controllers.TgmCtrl

	execLogRepo repository.ExecLogRepo

	cfg     ExecutorConfig
	metrics map[structs.MetricConst]prometheus.Counter
	logger  *logrus.Logger
}

func NewExecutorUseCase(
	guardrail *guardrailUseCase,
	broker *brokerUseCase,
	publisher *publisherUseCase,
	crypto controllers.CryptoCtrl,
	tgmController controllers.TgmCtrl,
	execLogRepo repository.ExecLogRepo,
	cfg ExecutorConfig,
	metrics map[structs.MetricConst]prometheus.Counter,
	logger *logrus.Logger,
) *executorUseCase {
	return &executorUseCase{
		guardrail:        guardrail,
		broker:           broker,
		publisher:        publisher,
		cryptoController: crypto,
		tgmController:    tgmController,
		execLogRepo:      execLogRepo,
		cfg:              cfg,
		metrics:          metrics,
		logger:           logger,
	}
}

// Execute processes one inbound request. Recognized-but-filtered events
// answer 200 with the skip reason in the body; only unparseable payloads
// (400) and failed authentication (403) answer non-2xx. Broker failures
// are reported inside a 200, webhook sources retry on non-2xx and cannot
// act on a 5xx anyway.
func (u *executorUseCase) Execute(body []byte, headers map[string]string) *structs.ExecutionResponse {
	if u.cryptoController.SecretConfigured() && !u.cryptoController.VerifySecret(headers[HeaderSharedSecret]) {
		u.logger.
			WithField("method", "Execute").
			Error("shared secret mismatch")

		return &structs.ExecutionResponse{Status: http.StatusForbidden, Error: "invalid shared secret"}
	}

	if sig := headers[HeaderSignature]; u.cryptoController.SignatureConfigured() && sig != "" {
		if !u.cryptoController.Verify(body, sig) {
			u.logger.
				WithField("method", "Execute").
				Error("hmac signature mismatch")

			return &structs.ExecutionResponse{Status: http.StatusForbidden, Error: "invalid signature"}
		}
	}

	event, err := u.normalize(body)
	if err != nil {
		return &structs.ExecutionResponse{
			Status: http.StatusBadRequest,
			Error:  fmt.Sprintf("error parsing webhook data: %s", err),
		}
	}

	if msg, ok := event.Validate(); !ok {
		return &structs.ExecutionResponse{Status: http.StatusOK, Message: msg}
	}

	if decision := u.guardrail.Check(event); !decision.Allowed {
		return u.skip(event, decision)
	}

	if event.Confidence < u.cfg.MinConfidence {
		return u.skip(event, structs.Skipped(structs.ReasonLowConfidence,
			fmt.Sprintf("confidence %.2f < %.2f", event.Confidence, u.cfg.MinConfidence)))
	}

	refPrice := u.resolvePrice(event)

	if resp := u.checkBuyingPower(event, refPrice); resp != nil {
		return resp
	}

	// Stamp the debounce marker and the symbol cooldown before touching
	// the broker so a concurrent delivery for the same signal or symbol
	// loses the claim instead of executing alongside this one.
	if claimed, err := u.guardrail.Reserve(event); err != nil {
		u.logger.
			WithField("method", "Execute").
			WithError(err).
			Error("guardrail reservation failed, continuing")
	} else if !claimed {
		return u.skip(event, structs.Skipped(structs.ReasonDebounce, "lost reservation to concurrent signal"))
	}

	results, outcome := u.placeTrade(event, refPrice)

	if err := u.guardrail.Record(event); err != nil {
		u.logger.
			WithField("method", "Execute").
			WithError(err).
			Error("recording guardrail admission failed")
	}

	u.writeLog(event, results, outcome)

	go u.notify(event, results, outcome)
	go u.publishCompletion(event, outcome)

	return &structs.ExecutionResponse{
		Status:       http.StatusOK,
		Message:      "Webhook processed successfully",
		WebhookData:  event,
		TradeResults: &results,
	}
}

// normalize builds the immutable SignalEvent from any of the recognized
// payload shapes.
func (u *executorUseCase) normalize(body []byte) (*models.SignalEvent, error) {
	var payload structs.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	event := &models.SignalEvent{
		Qty:        1,
		Source:     sourceWebhook,
		Timestamp:  time.Now().UTC(),
		Confidence: 1.0,
	}

	if len(payload.Data) > 0 {
		// Provider array format: symbol and price live in the first
		// element, action defaults to BUY.
		tick := payload.Data[0]

		event.Symbol = strings.ToUpper(tick.Symbol)
		if event.Symbol == "" {
			event.Symbol = strings.ToUpper(payload.Symbol)
		}

		event.Action = strings.ToUpper(payload.Action)
		if event.Action == "" {
			event.Action = models.SideBUY
		}

		event.Price = tick.Price
		event.Source = sourceProvider
	} else {
		event.Symbol = strings.ToUpper(payload.Symbol)
		event.Action = strings.ToUpper(payload.Action)
		event.Price = payload.Price

		if payload.Source != "" {
			event.Source = payload.Source
		}

		if payload.Timestamp != "" {
			if ts, err := time.Parse(time.RFC3339, payload.Timestamp); err == nil {
				event.Timestamp = ts.UTC()
			}
		}
	}

	if payload.Qty != nil {
		event.Qty = *payload.Qty
	}

	if payload.Confidence != nil {
		event.Confidence = *payload.Confidence
	}

	event.CorrelationID = payload.CorrelationID
	if event.CorrelationID == "" {
		event.CorrelationID = uuid.NewString()
	}

	event.StopLossPct = payload.StopLossPct
	event.TakeProfitPct = payload.TakeProfitPct
	event.DryRun = payload.DryRun

	return event, nil
}

func (u *executorUseCase) resolvePrice(event *models.SignalEvent) float64 {
	if event.Price > 0 {
		return event.Price
	}

	// Only fetch a quote when something downstream needs a reference
	// price; it is best-effort either way.
	needsPrice := event.StopLossPct > 0 || event.TakeProfitPct > 0 ||
		(u.cfg.AutoExecute && !event.DryRun)
	if !needsPrice {
		return 0
	}

	price, err := u.broker.GetQuote(event.Symbol)
	if err != nil {
		u.logger.
			WithField("method", "resolvePrice").
			WithError(err).
			Debugf("quote lookup failed for %s", event.Symbol)

		return 0
	}

	return price
}

func (u *executorUseCase) checkBuyingPower(event *models.SignalEvent, refPrice float64) *structs.ExecutionResponse {
	if !u.cfg.AutoExecute || event.DryRun || refPrice <= 0 {
		return nil
	}

	account, err := u.broker.GetAccount()
	if err != nil {
		// The pre-check is advisory; the broker rejects the order itself
		// if funds are short.
		u.logger.
			WithField("method", "checkBuyingPower").
			WithError(err).
			Error("account lookup failed, skipping pre-check")

		return nil
	}

	buyingPower := account.BuyingPowerValue()
	estimated := refPrice * float64(event.Qty)

	if buyingPower > 0 && estimated > buyingPower {
		return u.skip(event, structs.Skipped(structs.ReasonBuyingPower,
			fmt.Sprintf("estimated cost %.2f > buying power %.2f", estimated, buyingPower)))
	}

	return nil
}

func (u *executorUseCase) placeTrade(event *models.SignalEvent, refPrice float64) (models.TradeResults, string) {
	var results models.TradeResults

	if !u.cfg.AutoExecute || event.DryRun {
		results.Trades = append(results.Trades, models.TradeResult{
			Action:      event.Action,
			Symbol:      event.Symbol,
			Qty:         event.Qty,
			Success:     true,
			OrderID:     "dry-run",
			OrderStatus: "simulated",
		})
		results.Summarize()

		incMetric(u.metrics, structs.MetricTradeSimulated)

		return results, outcomeSimulated
	}

	opts := ProtectivePrices(event.Action, refPrice, event.StopLossPct, event.TakeProfitPct)

	placed, err := u.broker.PlaceOrder(event.Symbol, event.Action, event.Qty, opts)
	if err != nil {
		results.Trades = append(results.Trades, models.TradeResult{
			Action: event.Action,
			Symbol: event.Symbol,
			Qty:    event.Qty,
			Error:  err.Error(),
		})
		results.Summarize()

		incMetric(u.metrics, structs.MetricTradeFailed)

		return results, outcomeFailed
	}

	results.Trades = append(results.Trades, models.TradeResult{
		Action:      event.Action,
		Symbol:      event.Symbol,
		Qty:         event.Qty,
		Success:     placed.Primary.ID != "",
		OrderID:     placed.Primary.ID,
		OrderStatus: placed.Primary.Status,
	})

	// Bracket legs come back embedded in the primary order; independent
	// protective orders arrive as separately placed legs. Both belong in
	// the results.
	for _, leg := range append(placed.Primary.Legs, placed.Legs...) {
		results.Trades = append(results.Trades, models.TradeResult{
			Action:      strings.ToUpper(leg.Side),
			Symbol:      leg.Symbol,
			Qty:         event.Qty,
			Success:     true,
			OrderID:     leg.ID,
			OrderStatus: leg.Status,
		})
	}

	for _, legErr := range placed.LegErrors {
		results.Trades = append(results.Trades, models.TradeResult{
			Symbol: event.Symbol,
			Qty:    event.Qty,
			Error:  legErr,
		})
	}

	results.Summarize()

	incMetric(u.metrics, structs.MetricTradeExecuted)

	return results, outcomeExecuted
}

func (u *executorUseCase) skip(event *models.SignalEvent, decision structs.Decision) *structs.ExecutionResponse {
	u.logger.
		WithField("method", "skip").
		Infof("skipping trade for %s: %s (%s)", event.Symbol, decision.Reason, decision.Detail)

	var results models.TradeResults
	results.Summarize()

	u.writeLog(event, results, "skipped:"+decision.Reason)

	incMetric(u.metrics, structs.MetricTradeSkipped)

	return &structs.ExecutionResponse{
		Status:      http.StatusOK,
		Message:     fmt.Sprintf("Skipped: %s (%s)", decision.Reason, decision.Detail),
		WebhookData: event,
	}
}

func (u *executorUseCase) writeLog(event *models.SignalEvent, results models.TradeResults, outcome string) {
	correlationID := event.CorrelationID
	if correlationID == "" {
		correlationID = "noid"
	}

	log := &models.ExecutionLog{
		Key:          fmt.Sprintf("webhook-trades/%s-%s", correlationID, event.Symbol),
		Timestamp:    time.Now().UTC(),
		WebhookData:  *event,
		TradeResults: results,
		Outcome:      outcome,
	}

	// Audit is best-effort; the broker's order list is authoritative.
	if err := u.execLogRepo.Store(log); err != nil {
		u.logger.
			WithField("method", "writeLog").
			WithError(err).
			Error("execution log write failed")
	}
}

func (u *executorUseCase) notify(event *models.SignalEvent, results models.TradeResults, outcome string) {
	if u.tgmController == nil {
		return
	}

	text := fmt.Sprintf("[ Webhook Trade ]\n"+
		"symbol:\t%s\n"+
		"action:\t%s\n"+
		"qty:\t%d\n"+
		"source:\t%s\n"+
		"outcome:\t%s\n"+
		"orders:\t%d ok / %d failed\n",
		event.Symbol,
		event.Action,
		event.Qty,
		event.Source,
		outcome,
		results.Summary.SuccessfulOrders,
		results.Summary.FailedOrders,
	)

	if err := u.tgmController.Send(text); err != nil {
		u.logger.
			WithField("method", "notify").
			WithError(err).
			Error("notification failed")
	}
}

func (u *executorUseCase) publishCompletion(event *models.SignalEvent, outcome string) {
	if u.publisher == nil {
		return
	}

	detail, err := json.Marshal(map[string]interface{}{
		"correlation_id": event.CorrelationID,
		"symbol":         event.Symbol,
		"action":         event.Action,
		"qty":            event.Qty,
		"outcome":        outcome,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	fallback, err := json.Marshal(map[string]interface{}{
		"correlation_id": event.CorrelationID,
		"status":         "fallback",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	ok := u.publisher.Publish(
		models.PipelineEvent{Source: "tradeauto.webhook", DetailType: "Trade Executed", Detail: detail},
		models.PipelineEvent{Source: "tradeauto.webhook", DetailType: "Trade Executed", Detail: fallback},
	)
	if !ok && u.tgmController != nil {
		if err := u.tgmController.Send(fmt.Sprintf("[ Delivery Failure ]\nall tiers failed for %s", event.CorrelationID)); err != nil {
			u.logger.
				WithField("method", "publishCompletion").
				WithError(err).
				Error("escalation failed")
		}
	}
}
