package config

import (
	"github.com/statflow/listrelay/internal/logger"
	"github.com/statflow/listrelay/internal/tracing"
)

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"8080"`
	// Optional shared secret checked against the ?token= query param.
	// When empty, no token check is performed.
	WebhookToken string `env:"WEBHOOK_TOKEN"`
	// When true the handler waits for delivery and maps an exhausted
	// retry chain to 502. Default is fire-and-forget.
	ForwardSync bool `env:"FORWARD_SYNC" envDefault:"false"`
	Logger      *logger.Config
	Tracing     *tracing.JaegerConfig
}

type GA4Config struct {
	CollectURL    string `env:"GA4_COLLECT_URL" envDefault:"https://www.google-analytics.com/mp/collect"`
	MeasurementID string `env:"GA4_MEASUREMENT_ID"`
	APISecret     string `env:"GA4_API_SECRET"`
	DebugMode     bool   `env:"GA4_DEBUG_MODE" envDefault:"false"`
}

// IsConfigured reports whether both required query credentials are
// present. Their absence is a per-request 500, not a startup failure,
// so the service can still answer Mailchimp's URL validation pings.
func (c *GA4Config) IsConfigured() bool {
	return c.MeasurementID != "" && c.APISecret != ""
}

type DedupConfig struct {
	WindowSeconds int `env:"DEDUP_WINDOW_SECONDS" envDefault:"30"`
}

type ForwarderConfig struct {
	MaxAttempts      int    `env:"FORWARD_MAX_ATTEMPTS" envDefault:"3"`
	AttemptTimeoutMs int    `env:"FORWARD_ATTEMPT_TIMEOUT_MS" envDefault:"5000"`
	BackoffBaseMs    int    `env:"FORWARD_BACKOFF_BASE_MS" envDefault:"500"`
	BackoffMaxMs     int    `env:"FORWARD_BACKOFF_MAX_MS" envDefault:"5000"`
	BackoffJitterMs  int    `env:"FORWARD_BACKOFF_JITTER_MS" envDefault:"250"`
	EventName        string `env:"FORWARD_EVENT_NAME" envDefault:"newsletter_signup"`
}

type ExtractorConfig struct {
	// Name of the Mailchimp interest grouping whose "groups" value is
	// carried into the analytics event.
	NewsletterGroupLabel string `env:"NEWSLETTER_GROUP_LABEL" envDefault:"Newsletters"`
}
