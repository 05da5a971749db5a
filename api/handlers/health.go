package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/statflow/listrelay/config"
	"github.com/statflow/listrelay/dto"
	"github.com/statflow/listrelay/interfaces"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Status reports process uptime and the size of the dedup cache
func Status(cfg *config.AppConfig, dedupService interfaces.DedupService, startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.StatusResponse{
			Status:       "ok",
			UptimeSecs:   int64(time.Since(startedAt).Seconds()),
			DedupEntries: dedupService.Size(),
			ForwardSync:  cfg.ForwardSync,
		})
	}
}
