package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func traceRouter() (*gin.Engine, *[2]string) {
	gin.SetMode(gin.TestMode)
	var seen [2]string
	r := gin.New()
	r.GET("/ping", AttachTraceContext(), func(c *gin.Context) {
		seen[0], seen[1] = TraceIDs(c)
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestAttachTraceContextMintsIDs(t *testing.T) {
	r, seen := traceRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	traceID := rec.Header().Get("X-Trace-Id")
	requestID := rec.Header().Get("X-Request-Id")
	if traceID == "" || requestID == "" {
		t.Fatalf("missing trace headers: trace=%q request=%q", traceID, requestID)
	}
	if seen[0] != traceID || seen[1] != requestID {
		t.Fatalf("handler saw %q/%q, headers carry %q/%q", seen[0], seen[1], traceID, requestID)
	}
}

func TestAttachTraceContextHonorsInboundIDs(t *testing.T) {
	r, seen := traceRouter()
	wantTrace := uuid.New().String()
	wantReq := uuid.New().String()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-Id", wantTrace)
	req.Header.Set("X-Request-Id", wantReq)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Trace-Id"); got != wantTrace {
		t.Fatalf("trace id = %q, want %q", got, wantTrace)
	}
	if got := rec.Header().Get("X-Request-Id"); got != wantReq {
		t.Fatalf("request id = %q, want %q", got, wantReq)
	}
	if seen[0] != wantTrace || seen[1] != wantReq {
		t.Fatalf("handler saw %q/%q, want inbound ids", seen[0], seen[1])
	}
}
