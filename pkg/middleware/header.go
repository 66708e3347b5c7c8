package middleware

import (
	"net/http"
	"strings"

	"multistore/pkg/logger"
	"multistore/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireHeader rejects requests that do not carry a non-blank value for
// the named header. The value itself is not checked.
func RequireHeader(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader(name)) == "" {
			logger.FromGin(c).Warn("missing required header", zap.String("header", name))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.Fail("Missing "+name+" header"))
			return
		}
		c.Next()
	}
}
