package enum

import "strings"

// WebhookEventType is the set of event types Mailchimp delivers over
// webhooks. Classification is an exact match against this set; in
// particular "unsubscribe" is not a subscription event even though it
// contains the substring "subscribe".
type WebhookEventType string

const (
	WebhookEventSubscribe     WebhookEventType = "subscribe"
	WebhookEventUnsubscribe   WebhookEventType = "unsubscribe"
	WebhookEventProfileUpdate WebhookEventType = "profile"
	WebhookEventEmailChange   WebhookEventType = "upemail"
	WebhookEventCleaned       WebhookEventType = "cleaned"
	WebhookEventCampaign      WebhookEventType = "campaign"
	WebhookEventUnknown       WebhookEventType = "unknown"
)

func (t WebhookEventType) String() string {
	return string(t)
}

func (t WebhookEventType) IsSubscription() bool {
	return t == WebhookEventSubscribe
}

func DecodeWebhookEventType(raw string) WebhookEventType {
	switch WebhookEventType(strings.ToLower(strings.TrimSpace(raw))) {
	case WebhookEventSubscribe:
		return WebhookEventSubscribe
	case WebhookEventUnsubscribe:
		return WebhookEventUnsubscribe
	case WebhookEventProfileUpdate:
		return WebhookEventProfileUpdate
	case WebhookEventEmailChange:
		return WebhookEventEmailChange
	case WebhookEventCleaned:
		return WebhookEventCleaned
	case WebhookEventCampaign:
		return WebhookEventCampaign
	default:
		return WebhookEventUnknown
	}
}
