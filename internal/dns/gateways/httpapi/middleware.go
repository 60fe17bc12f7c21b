package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haukened/bindmgr/internal/dns/common/log"
)

// RequireAPIKey enforces a shared-secret API key sent as `X-API-Key: <key>`.
func RequireAPIKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-API-Key")
		if expected == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1 {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}
}

// RequestLogger logs one line per request after it has been served.
func RequestLogger(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		fields := map[string]any{
			"method":     method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.Last().Err.Error()
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error(fields, "api request")
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn(fields, "api request")
		default:
			logger.Info(fields, "api request")
		}
	}
}
