package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/task-manager/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := metrics.New()

	m.ObserveRequest(http.MethodGet, "GET /tasks", http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "GET /tasks", http.StatusOK, 7*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	expected := `
# HELP taskmanager_http_requests_total HTTP requests by method, route pattern and status code.
# TYPE taskmanager_http_requests_total counter
taskmanager_http_requests_total{method="GET",route="GET /tasks",status="200"} 2
taskmanager_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "taskmanager_http_requests_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestObserveRequestFoldsUnknownMethods(t *testing.T) {
	m := metrics.New()

	m.ObserveRequest("BREW", "", http.StatusMethodNotAllowed, time.Millisecond)
	m.ObserveRequest("X-RANDOM-1", "", http.StatusMethodNotAllowed, time.Millisecond)
	m.ObserveRequest(http.MethodDelete, "DELETE /tasks/{id}", http.StatusNoContent, time.Millisecond)

	expected := `
# HELP taskmanager_http_requests_total HTTP requests by method, route pattern and status code.
# TYPE taskmanager_http_requests_total counter
taskmanager_http_requests_total{method="DELETE",route="DELETE /tasks/{id}",status="204"} 1
taskmanager_http_requests_total{method="other",route="unmatched",status="405"} 2
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "taskmanager_http_requests_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestAuthEvent(t *testing.T) {
	m := metrics.New()

	m.AuthEvent("login", "success")
	m.AuthEvent("login", "failure")
	m.AuthEvent("login", "failure")

	if n, err := testutil.GatherAndCount(m.Registry(), "taskmanager_auth_events_total"); err != nil || n != 2 {
		t.Fatalf("expected 2 series, got %d (err %v)", n, err)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveRequest(http.MethodGet, "GET /", http.StatusOK, time.Millisecond)
	m.AuthEvent("login", "success")
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.AuthEvent("register", "success")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), `taskmanager_auth_events_total{event="register",outcome="success"} 1`) {
		t.Fatalf("expected auth event in exposition, got:\n%s", body)
	}
}
