package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nursultanq/gymapp/internal/stats"
)

const ctxCorrelationIDKey = "correlationID"

// Correlation ensures every request carries a correlation id. An incoming
// header value is reused so a caller can trace a request across services;
// otherwise a fresh id is generated. The id is echoed back on the response.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(stats.CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ctxCorrelationIDKey, id)
		c.Header(stats.CorrelationIDHeader, id)
		c.Next()
	}
}

// CorrelationID returns the request's correlation id, empty when the
// middleware did not run.
func CorrelationID(c *gin.Context) string {
	return c.GetString(ctxCorrelationIDKey)
}
