package dto

// InboundEvent is the canonical form of a webhook body after
// normalization. JSON bodies arrive in this shape already; form-encoded
// bodies are expanded into it from bracket-nested keys.
type InboundEvent map[string]interface{}

// SubscriptionRecord carries the fields extracted from an InboundEvent
// for a single request. It is never persisted.
type SubscriptionRecord struct {
	EventType   string            `json:"eventType"`
	Email       string            `json:"email"`
	ListID      string            `json:"listId"`
	MergeFields map[string]string `json:"mergeFields"`
	Grouping    string            `json:"grouping"`
}

type WebhookResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"requestId,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
}

type StatusResponse struct {
	Status       string `json:"status"`
	UptimeSecs   int64  `json:"uptimeSecs"`
	DedupEntries int    `json:"dedupEntries"`
	ForwardSync  bool   `json:"forwardSync"`
}
