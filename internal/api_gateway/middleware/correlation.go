package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"

	// RequestIDHeader is accepted when the caller's proxy only sets a request id
	RequestIDHeader = "X-Request-ID"

	CorrelationIDKey = "correlation_id"
)

// CorrelationID tags each request with an id that follows it into the engine logs
// and the queued intents it produces
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = c.GetHeader(RequestIDHeader)
		}
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, correlationID)
		c.Set(CorrelationIDKey, correlationID)

		c.Next()
	}
}

func GetCorrelationID(c *gin.Context) string {
	return c.GetString(CorrelationIDKey)
}
