package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/statflow/listrelay/api/handlers"
	"github.com/statflow/listrelay/api/middleware"
	"github.com/statflow/listrelay/config"
	"github.com/statflow/listrelay/internal/logger"
	"github.com/statflow/listrelay/services"
)

const appSource = "listrelay"

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, cfg *config.Config, s *services.Services, log logger.Logger, startedAt time.Time) {
	if s == nil {
		panic("Services cannot be nil")
	}

	r.Use(gin.Recovery())

	// Health check and status endpoints (no token or tracing needed)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", handlers.Status(cfg.AppConfig, s.DedupService, startedAt))

	tokenMiddleware := middleware.TokenMiddleware(middleware.TokenConfig{
		QueryParam:  "token",
		SharedToken: cfg.AppConfig.WebhookToken,
	})

	mailchimpHandler := handlers.NewMailchimpHandler(cfg, s, log)

	webhooks := r.Group("/webhooks")
	webhooks.Use(middleware.RequestContextMiddleware(appSource))
	webhooks.Use(middleware.TracingMiddleware())
	{
		webhooks.GET("/mailchimp", mailchimpHandler.Ping())
		webhooks.OPTIONS("/mailchimp", mailchimpHandler.Preflight())
		webhooks.POST("/mailchimp", tokenMiddleware, mailchimpHandler.Receive())
	}
}
