package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"budget/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()

	if !strings.HasPrefix(a, "req_") {
		t.Fatalf("expected req_ prefix, got %q", a)
	}
	if len(a) != len("req_")+16 {
		t.Errorf("expected 16 hex chars after prefix, got %q", a)
	}
	if a == b {
		t.Error("expected distinct request ids")
	}
}

func TestMiddleware_PropagatesRequestID(t *testing.T) {
	m := NewMiddleware(func(*http.Request) string { return "10.0.0.1" }, log.Discard())

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/budget", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Errorf("handler did not see a request id, got %q", seen)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestMiddleware_CountsStatuses(t *testing.T) {
	m := NewMiddleware(nil, log.Discard())

	statuses := []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError, http.StatusFound}
	for _, status := range statuses {
		status := status
		handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	metrics := m.GetMetrics()
	if metrics.TotalRequests != 4 {
		t.Errorf("TotalRequests = %d, want 4", metrics.TotalRequests)
	}
	if metrics.ClientErrors != 1 {
		t.Errorf("ClientErrors = %d, want 1", metrics.ClientErrors)
	}
	if metrics.ServerErrors != 1 {
		t.Errorf("ServerErrors = %d, want 1", metrics.ServerErrors)
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}
