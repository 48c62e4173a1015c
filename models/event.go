package models

import "encoding/json"

// PipelineEvent is the delivery envelope for one stage-completion
// notification. It lives only for the duration of a publish attempt.
type PipelineEvent struct {
	Source     string          `json:"source"`
	DetailType string          `json:"detailType"`
	Detail     json.RawMessage `json:"detail"`
	EventBus   string          `json:"eventBus,omitempty"`
}
