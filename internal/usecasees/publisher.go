package usecasees

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"tradeauto/internal/controllers"
	"tradeauto/internal/usecasees/structs"
	"tradeauto/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const publishAttempts = 3

// publisherUseCase delivers stage-completion events with tiered fallback:
// the full event over the bus with retries, then a reduced fallback event,
// then a direct invocation of the downstream stage. Forward progress of
// the pipeline beats delivery guarantees of any single channel.
type publisherUseCase struct {
	clientController controllers.ClientCtrl

	busURL    string
	invokeURL string

	backoffUnit time.Duration

	metrics map[structs.MetricConst]prometheus.Counter
	logger  *logrus.Logger
}

func NewPublisherUseCase(
	client controllers.ClientCtrl,
	busURL string,
	invokeURL string,
	backoffUnit time.Duration,
	metrics map[structs.MetricConst]prometheus.Counter,
	logger *logrus.Logger,
) *publisherUseCase {
	return &publisherUseCase{
		clientController: client,
		busURL:           busURL,
		invokeURL:        invokeURL,
		backoffUnit:      backoffUnit,
		metrics:          metrics,
		logger:           logger,
	}
}

// Publish returns true the moment any tier succeeds and false only when
// all three tiers fail. Callers must not treat false as fatal to their
// own result.
func (u *publisherUseCase) Publish(primary, fallback models.PipelineEvent) bool {
	// Delivery disabled entirely when no channel is configured.
	if u.busURL == "" && u.invokeURL == "" {
		return true
	}

	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if u.publishToBus(primary) {
			u.logger.
				WithField("method", "Publish").
				Debugf("event published on attempt %d/%d", attempt, publishAttempts)

			incMetric(u.metrics, structs.MetricPublishPrimary)

			return true
		}

		if attempt < publishAttempts {
			time.Sleep(u.backoff(attempt))
		}
	}

	// Retries exhausted: a single reduced-payload attempt keeps the
	// downstream stage moving even when the full detail cannot pass
	// (size or validation issues on the bus side).
	u.logger.
		WithField("method", "Publish").
		Error("bus publish retries exhausted, attempting fallback event")

	if u.publishToBus(fallback) {
		incMetric(u.metrics, structs.MetricPublishFallback)

		return true
	}

	if u.invokeDirect(primary.Detail) {
		incMetric(u.metrics, structs.MetricPublishDirect)

		return true
	}

	u.logger.
		WithField("method", "Publish").
		Error("all delivery tiers failed")

	incMetric(u.metrics, structs.MetricPublishLost)

	return false
}

// backoff doubles per failed attempt: with a one second unit the waits
// are 2s then 4s.
func (u *publisherUseCase) backoff(attempt int) time.Duration {
	return u.backoffUnit * (1 << uint(attempt))
}

func (u *publisherUseCase) publishToBus(event models.PipelineEvent) bool {
	busURL, err := url.Parse(u.busURL)
	if err != nil {
		u.logger.
			WithField("method", "publishToBus").
			WithError(err).
			Error("bad bus url")

		return false
	}

	body, err := json.Marshal(structs.BusRequest{Entries: []models.PipelineEvent{event}})
	if err != nil {
		return false
	}

	status, resp, err := u.clientController.Send(http.MethodPost, busURL, nil, body)
	if err != nil || status < http.StatusOK || status >= http.StatusMultipleChoices {
		return false
	}

	// The bus can ack with 200 and still report per-entry failures.
	var ack structs.BusAck
	if err := json.Unmarshal(resp, &ack); err != nil {
		u.logger.
			WithField("method", "publishToBus").
			WithError(err).
			Error("unparseable bus ack")

		return false
	}

	if ack.FailedEntryCount != 0 {
		u.logger.
			WithField("method", "publishToBus").
			Errorf("bus reported %d failed entries", ack.FailedEntryCount)

		return false
	}

	return true
}

func (u *publisherUseCase) invokeDirect(detail json.RawMessage) bool {
	if u.invokeURL == "" {
		return false
	}

	invokeURL, err := url.Parse(u.invokeURL)
	if err != nil {
		return false
	}

	u.logger.
		WithField("method", "invokeDirect").
		Warn("bypassing bus, invoking downstream stage directly")

	status, _, err := u.clientController.Send(http.MethodPost, invokeURL, nil, detail)
	if err != nil || status < http.StatusOK || status >= http.StatusMultipleChoices {
		return false
	}

	return true
}

func incMetric(metrics map[structs.MetricConst]prometheus.Counter, key structs.MetricConst) {
	if metrics == nil {
		return
	}

	if counter, ok := metrics[key]; ok {
		counter.Inc()
	}
}
