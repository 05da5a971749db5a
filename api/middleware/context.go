package middleware

import (
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/statflow/listrelay/internal/utils"
)

// RequestContextMiddleware assigns every request a nanoid and makes it
// available both to handlers (gin key) and to everything downstream
// through the request context.
func RequestContextMiddleware(appSource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId, err := gonanoid.New()
		if err == nil {
			c.Set("RequestId", requestId)
		}
		ctx := utils.WithRequestContextFromGin(c, appSource)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
