package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(Metrics(m, m.HTTPInFlight))
	r.Get("/api/v1/accounts/{conta}/balance", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/api/v1/accounts/1/balance", "/api/v1/accounts/2/balance"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	counter := m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/accounts/{conta}/balance", "418")
	if got := testutil.ToFloat64(counter); got != 2 {
		t.Fatalf("expected counter to be 2, got %v", got)
	}

	if got := testutil.ToFloat64(m.HTTPInFlight); got != 0 {
		t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
	}
}

func TestMetricsMiddlewareUnmatchedRoute(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())

	handler := Metrics(m, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/nope/123", nil))

	counter := m.HTTPRequests.WithLabelValues(http.MethodPost, "unmatched", "404")
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Fatalf("expected unmatched counter to be 1, got %v", got)
	}
}
