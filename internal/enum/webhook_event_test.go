package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeWebhookEventType(t *testing.T) {
	assert.Equal(t, WebhookEventSubscribe, DecodeWebhookEventType("subscribe"))
	assert.Equal(t, WebhookEventSubscribe, DecodeWebhookEventType(" Subscribe "))
	assert.Equal(t, WebhookEventUnsubscribe, DecodeWebhookEventType("unsubscribe"))
	assert.Equal(t, WebhookEventCleaned, DecodeWebhookEventType("cleaned"))
	assert.Equal(t, WebhookEventUnknown, DecodeWebhookEventType("something-else"))
	assert.Equal(t, WebhookEventUnknown, DecodeWebhookEventType(""))
}

func TestIsSubscription(t *testing.T) {
	assert.True(t, WebhookEventSubscribe.IsSubscription())
	// Exact comparison: "unsubscribe" contains "subscribe" but is not
	// a subscription event.
	assert.False(t, WebhookEventUnsubscribe.IsSubscription())
	assert.False(t, WebhookEventUnknown.IsSubscription())
}
