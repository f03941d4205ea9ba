package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func requestSeriesCount(t *testing.T, m *Metrics) int {
	t.Helper()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "cirrus_http_requests_total" {
			return len(f.GetMetric())
		}
	}
	return 0
}

func TestWithHTTPMetrics_UnmatchedPathsShareOneSeries(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := m.WithHTTPMetrics(mux)

	for i := 0; i < 500; i++ {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/scan/%d", i), nil)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	// One series for the scanner traffic, one for the matched route.
	if got := requestSeriesCount(t, m); got != 2 {
		t.Fatalf("request counter series = %d, want 2", got)
	}
}

func TestWithHTTPMetrics_LabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/settings", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := m.WithHTTPMetrics(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/settings", nil))

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "cirrus_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "path" && l.GetValue() == "/api/settings" {
					return
				}
			}
		}
	}
	t.Fatalf("no request counter series labeled path=/api/settings")
}
