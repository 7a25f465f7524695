package middleware

import (
	"github.com/gin-gonic/gin"

	"nearbot/internal/logging"
	"nearbot/pkg/utils"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID stores an ID under logging.RequestIDKey and echoes it in the
// response. A well-formed incoming X-Request-ID is reused.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := utils.RequestIDOrNew(c.GetHeader(RequestIDHeader))
		c.Set(logging.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the ID set by RequestID, or "" outside that chain.
func GetRequestID(c *gin.Context) string {
	return c.GetString(logging.RequestIDKey)
}
