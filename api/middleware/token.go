package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenConfig holds the configuration for shared-secret authentication
type TokenConfig struct {
	QueryParam  string
	SharedToken string
}

// TokenMiddleware validates the ?token= query parameter against the
// configured shared secret. Mailchimp cannot send custom headers, so
// the secret travels in the webhook URL. When no secret is configured
// the check is skipped entirely.
func TokenMiddleware(config TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.SharedToken == "" {
			c.Next()
			return
		}

		token := strings.TrimSpace(c.Query(config.QueryParam))

		if subtle.ConstantTimeCompare([]byte(token), []byte(config.SharedToken)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Invalid token",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
