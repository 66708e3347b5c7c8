package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewHTTPMetrics("test")

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/:backend/users/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, p := range []string{"/api/sqlite/users/1", "/api/sqlite/users/2", "/nope"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, p, nil)
		r.ServeHTTP(w, req)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("test", "GET", "/api/:backend/users/:id", "404"))
	if got != 2 {
		t.Errorf("expected 2 templated requests, got %v", got)
	}
	got = testutil.ToFloat64(m.requests.WithLabelValues("test", "GET", "unmatched", "404"))
	if got != 1 {
		t.Errorf("expected 1 unmatched request, got %v", got)
	}
}

func TestBackendGauges(t *testing.T) {
	m := NewHTTPMetrics("test")

	m.SetBackendReady("mongo", false)
	m.SetBackendReady("sqlite", true)
	m.RecordBackendError("mongo", "unavailable")

	if v := testutil.ToFloat64(m.backendReady.WithLabelValues("test", "sqlite")); v != 1 {
		t.Errorf("expected sqlite ready 1, got %v", v)
	}
	if v := testutil.ToFloat64(m.backendReady.WithLabelValues("test", "mongo")); v != 0 {
		t.Errorf("expected mongo ready 0, got %v", v)
	}
	if v := testutil.ToFloat64(m.backendFailures.WithLabelValues("test", "mongo", "unavailable")); v != 1 {
		t.Errorf("expected 1 mongo failure, got %v", v)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := NewHTTPMetrics("test")
	m.SetBackendReady("memory", true)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `backend_ready{backend="memory",service="test"} 1`) {
		t.Errorf("expected backend_ready series in output:\n%s", w.Body.String())
	}
}
