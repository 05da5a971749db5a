package dto

// CollectPayload is the body posted to the GA4 Measurement Protocol
// /mp/collect endpoint. Field names follow the protocol, not our own
// conventions.
type CollectPayload struct {
	ClientID string           `json:"client_id"`
	UserID   string           `json:"user_id,omitempty"`
	Events   []AnalyticsEvent `json:"events"`
}

type AnalyticsEvent struct {
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params"`
}
