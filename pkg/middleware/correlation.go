package middleware

import (
	"multistore/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CorrelationIDHeader = "X-Correlation-ID"
const CorrelationIDKey = "correlation_id"

// CorrelationID is a Gin middleware that extracts or generates a correlation ID
// and stores a request-scoped logger carrying it.
func CorrelationID(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(CorrelationIDKey, correlationID)
		c.Set(logger.ContextKey, log.With(zap.String(CorrelationIDKey, correlationID)))
		c.Header(CorrelationIDHeader, correlationID)

		c.Next()
	}
}
