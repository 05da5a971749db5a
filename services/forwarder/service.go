package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/statflow/listrelay/config"
	"github.com/statflow/listrelay/dto"
	"github.com/statflow/listrelay/interfaces"
	"github.com/statflow/listrelay/internal/enum"
	er "github.com/statflow/listrelay/internal/errors"
	"github.com/statflow/listrelay/internal/logger"
	"github.com/statflow/listrelay/internal/tracing"
	"github.com/statflow/listrelay/internal/utils"
)

type ga4Forwarder struct {
	cfg    *config.GA4Config
	fwdCfg *config.ForwarderConfig
	log    logger.Logger
	client *http.Client
}

func NewForwarderService(cfg *config.GA4Config, fwdCfg *config.ForwarderConfig, log logger.Logger) interfaces.ForwarderService {
	return &ga4Forwarder{
		cfg:    cfg,
		fwdCfg: fwdCfg,
		log:    log,
		// Per-attempt deadlines come from the request context; the
		// client itself carries no timeout.
		client: &http.Client{},
	}
}

// Forward delivers the analytics event with bounded retries. Transport
// errors, timeouts, 5xx and 429 are retried with capped exponential
// backoff plus jitter; any other 4xx is terminal since retrying a
// malformed request cannot fix it.
func (s *ga4Forwarder) Forward(ctx context.Context, record *dto.SubscriptionRecord) enum.DeliveryOutcome {
	span, ctx := tracing.StartTracerSpan(ctx, "ForwarderService.Forward")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagListId(span, record.ListID)

	if !s.cfg.IsConfigured() {
		tracing.TraceErr(span, er.ErrConfigurationMissing)
		s.log.Warn("GA4 credentials missing, dropping event")
		return enum.DeliveryFailed
	}

	payload := s.buildPayload(record)
	body, err := json.Marshal(payload)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "failed to marshal collect payload"))
		return enum.DeliveryFailed
	}
	tracing.LogObjectAsJson(span, "collectPayload", payload)

	endpoint := s.collectEndpoint()

	maxAttempts := s.fwdCfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if !s.waitBackoff(ctx, attempt) {
				tracing.TraceErr(span, errors.Wrap(ctx.Err(), "forwarding cancelled"))
				return enum.DeliveryFailed
			}
		}

		status, err := s.deliverOnce(ctx, span, endpoint, body)
		switch {
		case err != nil:
			s.log.Warnf("GA4 delivery attempt %d failed: %v", attempt, err)
		case status >= 200 && status < 300:
			s.log.Infof("GA4 delivery succeeded on attempt %d, client_id %s", attempt, payload.ClientID)
			span.SetTag("attempts", attempt)
			return enum.DeliveryDelivered
		case status >= 500 || status == http.StatusTooManyRequests:
			s.log.Warnf("GA4 delivery attempt %d got retryable status %d", attempt, status)
		default:
			// Terminal client error.
			tracing.TraceErr(span, errors.Wrapf(er.ErrDeliveryFailed, "non-retryable status %d", status))
			s.log.Errorf("GA4 delivery got terminal status %d, giving up", status)
			return enum.DeliveryFailed
		}
	}

	tracing.TraceErr(span, errors.Wrapf(er.ErrDeliveryFailed, "retries exhausted after %d attempts", maxAttempts))
	return enum.DeliveryFailed
}

func (s *ga4Forwarder) collectEndpoint() string {
	query := url.Values{}
	query.Set("measurement_id", s.cfg.MeasurementID)
	query.Set("api_secret", s.cfg.APISecret)
	return s.cfg.CollectURL + "?" + query.Encode()
}

func (s *ga4Forwarder) buildPayload(record *dto.SubscriptionRecord) *dto.CollectPayload {
	params := map[string]interface{}{
		"source":     "mailchimp",
		"method":     "webhook",
		"email_hash": utils.HashEmail(record.Email),
		"list_id":    record.ListID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if domain := utils.ExtractDomainFromEmail(record.Email); domain != "" {
		params["email_domain"] = domain
	}
	for field, value := range record.MergeFields {
		params[strings.ToLower(field)] = value
	}
	if record.Grouping != "" {
		params["newsletter_groups"] = record.Grouping
	}
	if s.cfg.DebugMode {
		params["debug_mode"] = true
	}

	eventName := s.fwdCfg.EventName
	if eventName == "" {
		eventName = "newsletter_signup"
	}

	return &dto.CollectPayload{
		ClientID: utils.ClientIDFromEmail(record.Email),
		Events: []dto.AnalyticsEvent{
			{
				Name:   eventName,
				Params: params,
			},
		},
	}
}

func (s *ga4Forwarder) deliverOnce(ctx context.Context, span opentracing.Span, endpoint string, body []byte) (int, error) {
	timeout := time.Duration(s.fwdCfg.AttemptTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.InjectSpanContextIntoHTTPRequest(req, span)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// waitBackoff sleeps base*2^(attempt-2) capped at the configured max,
// with random jitter so many simultaneous subscriptions don't retry in
// lockstep. Returns false if the context is cancelled while waiting.
func (s *ga4Forwarder) waitBackoff(ctx context.Context, attempt int) bool {
	base := time.Duration(s.fwdCfg.BackoffBaseMs) * time.Millisecond
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	maximum := time.Duration(s.fwdCfg.BackoffMaxMs) * time.Millisecond
	if maximum <= 0 {
		maximum = 5 * time.Second
	}

	delay := base
	for i := 2; i < attempt; i++ {
		delay *= 2
		if delay >= maximum {
			delay = maximum
			break
		}
	}
	if jitter := s.fwdCfg.BackoffJitterMs; jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(jitter)+1)) * time.Millisecond
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
