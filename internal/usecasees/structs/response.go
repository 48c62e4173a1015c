package structs

import "tradeauto/models"

// ExecutionResponse is the executor's answer to one inbound request.
// Status carries the HTTP code; everything else is the response body.
type ExecutionResponse struct {
	Status int `json:"-"`

	Message      string               `json:"message,omitempty"`
	Error        string               `json:"error,omitempty"`
	WebhookData  *models.SignalEvent  `json:"webhook_data,omitempty"`
	TradeResults *models.TradeResults `json:"trade_results,omitempty"`
}

// BusRequest is the envelope posted to the event bus endpoint.
type BusRequest struct {
	Entries []models.PipelineEvent `json:"entries"`
}

// BusAck is the bus response; a 200 with FailedEntryCount > 0 still counts
// as a failed publish.
type BusAck struct {
	FailedEntryCount int `json:"failedEntryCount"`
}
