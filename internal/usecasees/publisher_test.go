package usecasees

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"tradeauto/internal/controllers/mocks"
	"tradeauto/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	testBusURL    = "http://bus.local/events"
	testInvokeURL = "http://downstream.local/invoke"
)

func busHost(host string) interface{} {
	return mock.MatchedBy(func(u *url.URL) bool {
		return u.Host == host
	})
}

func testEvents() (models.PipelineEvent, models.PipelineEvent) {
	primary := models.PipelineEvent{
		Source:     "tradeauto.webhook",
		DetailType: "Trade Executed",
		Detail:     json.RawMessage(`{"symbol":"AAPL","outcome":"executed"}`),
	}
	fallback := models.PipelineEvent{
		Source:     "tradeauto.webhook",
		DetailType: "Trade Executed",
		Detail:     json.RawMessage(`{"status":"fallback"}`),
	}

	return primary, fallback
}

func newPublisher(client *mocks.ClientCtrl) *publisherUseCase {
	return NewPublisherUseCase(client, testBusURL, testInvokeURL, 0, nil, logrus.New())
}

func Test_Publish_BackoffSchedule(t *testing.T) {
	u := NewPublisherUseCase(&mocks.ClientCtrl{}, testBusURL, testInvokeURL, time.Second, nil, logrus.New())

	// One second unit waits 2s after the first failed attempt and 4s
	// after the second.
	assert.Equal(t, 2*time.Second, u.backoff(1))
	assert.Equal(t, 4*time.Second, u.backoff(2))
}

func Test_Publish_FirstAttemptSucceeds(t *testing.T) {
	client := &mocks.ClientCtrl{}
	client.On("Send", http.MethodPost, busHost("bus.local"), mock.Anything, mock.Anything).
		Return(http.StatusOK, []byte(`{"failedEntryCount":0}`), nil).
		Once()

	primary, fallback := testEvents()

	assert.True(t, newPublisher(client).Publish(primary, fallback))
	client.AssertNumberOfCalls(t, "Send", 1)
}

func Test_Publish_RetriesThenSucceeds(t *testing.T) {
	client := &mocks.ClientCtrl{}
	client.On("Send", http.MethodPost, busHost("bus.local"), mock.Anything, mock.Anything).
		Return(http.StatusBadGateway, []byte(nil), errors.New("bus down")).
		Twice()
	client.On("Send", http.MethodPost, busHost("bus.local"), mock.Anything, mock.Anything).
		Return(http.StatusOK, []byte(`{"failedEntryCount":0}`), nil).
		Once()

	primary, fallback := testEvents()

	assert.True(t, newPublisher(client).Publish(primary, fallback))
	client.AssertNumberOfCalls(t, "Send", 3)
}

func Test_Publish_FailedEntryCountIsFailure(t *testing.T) {
	// A 200 ack with failedEntryCount > 0 must count as a failed attempt,
	// so three such acks exhaust the primary tier.
	client := &mocks.ClientCtrl{}
	client.On("Send", http.MethodPost, busHost("bus.local"), mock.Anything, mock.Anything).
		Return(http.StatusOK, []byte(`{"failedEntryCount":1}`), nil).
		Times(3)
	client.On("Send", http.MethodPost, busHost("bus.local"), mock.Anything, mock.Anything).
		Return(http.StatusOK, []byte(`{"failedEntryCount":0}`), nil).
		Once()

	primary, fallback := testEvents()

	assert.True(t, newPublisher(client).Publish(primary, fallback))
	client.AssertNumberOfCalls(t, "Send", 4)
}

func Test_Publish_FallbackCarriesReducedEvent(t *testing.T) {
	client := &mocks.ClientCtrl{}
	client.On("Send", http.MethodPost, busHost("bus.local"), mock.Anything, mock.Anything).
		Return(http.StatusInternalServerError, []byte(nil), errors.New("bus down")).
		Times(3)
	client.On("Send", http.MethodPost, busHost("bus.local"), mock.Anything, mock.MatchedBy(func(body []byte) bool {
		var req struct {
			Entries []models.PipelineEvent `json:"entries"`
		}
		if err := json.Unmarshal(body, &req); err != nil || len(req.Entries) != 1 {
			return false
		}

		return string(req.Entries[0].Detail) == `{"status":"fallback"}`
	})).
		Return(http.StatusOK, []byte(`{"failedEntryCount":0}`), nil).
		Once()

	primary, fallback := testEvents()

	assert.True(t, newPublisher(client).Publish(primary, fallback))
	client.AssertExpectations(t)
}

func Test_Publish_DirectInvokeLastTier(t *testing.T) {
	client := &mocks.ClientCtrl{}
	client.On("Send", http.MethodPost, busHost("bus.local"), mock.Anything, mock.Anything).
		Return(http.StatusInternalServerError, []byte(nil), errors.New("bus down")).
		Times(4)

	primary, fallback := testEvents()

	// The direct invocation posts the raw detail, not the bus envelope.
	client.On("Send", http.MethodPost, busHost("downstream.local"), mock.Anything, []byte(primary.Detail)).
		Return(http.StatusOK, []byte(`ok`), nil).
		Once()

	assert.True(t, newPublisher(client).Publish(primary, fallback))
	client.AssertExpectations(t)
}

func Test_Publish_AllTiersFail(t *testing.T) {
	client := &mocks.ClientCtrl{}
	client.On("Send", http.MethodPost, mock.Anything, mock.Anything, mock.Anything).
		Return(http.StatusInternalServerError, []byte(nil), errors.New("down")).
		Times(5)

	primary, fallback := testEvents()

	assert.False(t, newPublisher(client).Publish(primary, fallback))
	client.AssertNumberOfCalls(t, "Send", 5)
}

func Test_Publish_NoInvokeURLConfigured(t *testing.T) {
	client := &mocks.ClientCtrl{}
	client.On("Send", http.MethodPost, mock.Anything, mock.Anything, mock.Anything).
		Return(http.StatusInternalServerError, []byte(nil), errors.New("down")).
		Times(4)

	primary, fallback := testEvents()

	u := NewPublisherUseCase(client, testBusURL, "", 0, nil, logrus.New())

	assert.False(t, u.Publish(primary, fallback))
	client.AssertNumberOfCalls(t, "Send", 4)
}
