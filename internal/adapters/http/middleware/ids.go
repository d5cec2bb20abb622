package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-slots/internal/platform/logging"
)

// Propagated ID headers.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// Gin context keys.
const (
	ContextKeyRequestID     = "request_id"
	ContextKeyCorrelationID = "correlation_id"
)

type idField struct {
	header   string
	key      string
	store    func(context.Context, string) context.Context
	withLogs func(context.Context, string) context.Context
}

// RequestID takes X-Request-ID from the request or generates a UUID. The ID
// is echoed in the response, stored on the gin and request contexts, and
// added to the context logger.
func RequestID() gin.HandlerFunc {
	return propagateID(idField{
		header:   HeaderRequestID,
		key:      ContextKeyRequestID,
		store:    ContextWithRequestID,
		withLogs: logging.WithRequestID,
	})
}

// CorrelationID does for X-Correlation-ID what RequestID does for
// X-Request-ID. A correlation ID spans every request of one browser session
// when the client resends it.
func CorrelationID() gin.HandlerFunc {
	return propagateID(idField{
		header:   HeaderCorrelationID,
		key:      ContextKeyCorrelationID,
		store:    ContextWithCorrelationID,
		withLogs: logging.WithCorrelationID,
	})
}

func propagateID(f idField) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(f.header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(f.key, id)
		c.Header(f.header, id)

		ctx := f.store(c.Request.Context(), id)
		ctx = f.withLogs(ctx, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID set by CorrelationID.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}
