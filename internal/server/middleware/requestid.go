package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mbergo/guardrails/internal/history"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or mints one, echoes it on
// the response, and stores it in the request context so gateway call records
// correlate with request logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(c.Request.Context(), history.ContextKeyRequestID, id)
		c.Request = c.Request.WithContext(ctx)

		c.Header(requestIDHeader, id)
		c.Next()
	}
}
