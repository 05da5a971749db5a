package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/statflow/listrelay/config"
	"github.com/statflow/listrelay/dto"
	"github.com/statflow/listrelay/internal/enum"
	er "github.com/statflow/listrelay/internal/errors"
	"github.com/statflow/listrelay/internal/logger"
	"github.com/statflow/listrelay/internal/tracing"
	"github.com/statflow/listrelay/internal/utils"
	"github.com/statflow/listrelay/services"
)

// Mailchimp expects its webhook call answered well inside its timeout,
// so the subscription path acks first and forwards in the background.
type MailchimpHandler struct {
	cfg *config.Config
	svc *services.Services
	log logger.Logger
}

func NewMailchimpHandler(cfg *config.Config, svc *services.Services, log logger.Logger) *MailchimpHandler {
	return &MailchimpHandler{
		cfg: cfg,
		svc: svc,
		log: log,
	}
}

// Ping answers Mailchimp's GET validation of the webhook URL.
func (h *MailchimpHandler) Ping() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	}
}

// Preflight answers CORS preflight requests.
func (h *MailchimpHandler) Preflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	}
}

func (h *MailchimpHandler) Receive() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "MailchimpHandler.Receive")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		requestId := c.GetString("RequestId")

		// Forwarding cannot possibly succeed without credentials, so
		// fail before any parsing cost.
		if !h.cfg.GA4Config.IsConfigured() {
			tracing.TraceErr(span, er.ErrConfigurationMissing)
			c.JSON(http.StatusInternalServerError, dto.WebhookResponse{
				Status:    "error",
				RequestID: requestId,
				Message:   er.ErrConfigurationMissing.Error(),
			})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			tracing.TraceErr(span, err)
			body = nil
		}

		event, err := h.svc.NormalizerService.Normalize(c.ContentType(), body)
		if err != nil {
			// Malformed bodies degrade to an empty event; Mailchimp
			// still gets its ack and retriggers nothing.
			tracing.TraceErr(span, err)
			event = dto.InboundEvent{}
		}

		record := h.svc.ExtractorService.Extract(event)
		eventType := enum.DecodeWebhookEventType(record.EventType)
		tracing.TagEventType(span, eventType.String())
		tracing.TagListId(span, record.ListID)

		if !eventType.IsSubscription() {
			h.log.Infof("Ignoring %s event for request %s", eventType, requestId)
			c.JSON(http.StatusOK, dto.WebhookResponse{
				Status:    "ignored",
				RequestID: requestId,
			})
			return
		}

		if record.Email == "" {
			tracing.TraceErr(span, er.ErrMissingEmail)
			c.JSON(http.StatusBadRequest, dto.WebhookResponse{
				Status:    "error",
				RequestID: requestId,
				Message:   er.ErrMissingEmail.Error(),
			})
			return
		}

		validation := mailvalidate.ValidateEmailSyntax(record.Email)
		if !validation.IsValid {
			tracing.TraceErr(span, er.ErrMissingEmail)
			c.JSON(http.StatusBadRequest, dto.WebhookResponse{
				Status:    "error",
				RequestID: requestId,
				Message:   er.ErrMissingEmail.Error(),
			})
			return
		}
		record.Email = validation.CleanEmail

		identityKey := utils.HashEmail(record.Email)
		if !h.svc.DedupService.ShouldProcess(identityKey, time.Now()) {
			h.log.Infof("Suppressing duplicate subscription for request %s", requestId)
			c.JSON(http.StatusOK, dto.WebhookResponse{
				Status:    "duplicate",
				RequestID: requestId,
			})
			return
		}

		if h.cfg.AppConfig.ForwardSync {
			if h.svc.ForwarderService.Forward(ctx, record) == enum.DeliveryFailed {
				c.JSON(http.StatusBadGateway, dto.WebhookResponse{
					Status:    "error",
					RequestID: requestId,
					Message:   er.ErrDeliveryFailed.Error(),
				})
				return
			}
			c.JSON(http.StatusOK, dto.WebhookResponse{
				Status:    "received",
				RequestID: requestId,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		// Ack before delivery so the caller never waits on GA4.
		c.JSON(http.StatusOK, dto.WebhookResponse{
			Status:    "received",
			RequestID: requestId,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})

		// The request context dies with the response; the background
		// delivery gets a fresh one carrying only the request identity.
		forwardCtx := utils.WithRequestContext(context.Background(), utils.GetRequestContext(ctx))
		go func() {
			defer tracing.RecoverAndLogToJaeger(h.log)
			outcome := h.svc.ForwarderService.Forward(forwardCtx, record)
			h.log.Infof("Forwarding result for request %s: %s", requestId, outcome)
		}()
	}
}
