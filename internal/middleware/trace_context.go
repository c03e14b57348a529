package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	traceIDKey   = "trace_id"
	requestIDKey = "request_id"
)

// AttachTraceContext gives every request a trace id and a request id and
// echoes both back as response headers. An inbound header wins; otherwise
// the id comes from the active otel span, or is minted fresh.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		traceID := strings.TrimSpace(c.GetHeader(headerTraceID))
		if traceID == "" {
			spanCtx := trace.SpanContextFromContext(c.Request.Context())
			if spanCtx.HasTraceID() {
				traceID = spanCtx.TraceID().String()
			}
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Set(traceIDKey, traceID)
		c.Set(requestIDKey, reqID)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

// TraceIDs reads the ids set by AttachTraceContext. Both come back empty
// when the middleware is not installed.
func TraceIDs(c *gin.Context) (traceID, requestID string) {
	return c.GetString(traceIDKey), c.GetString(requestIDKey)
}
