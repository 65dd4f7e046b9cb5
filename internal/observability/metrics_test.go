package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "openxmart_http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, "openxmart_http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestObserveIFSCLookup(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveIFSCLookup("cache")
	metrics.ObserveIFSCLookup("cache")
	metrics.ObserveIFSCLookup("upstream")

	body := scrape(t, metrics)
	if !strings.Contains(body, `openxmart_ifsc_lookups_total{source="cache"} 2`) {
		t.Fatalf("expected cache lookups, got: %s", body)
	}
	if !strings.Contains(body, `openxmart_ifsc_lookups_total{source="upstream"} 1`) {
		t.Fatalf("expected upstream lookups, got: %s", body)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveIFSCLookup("cache")

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestRegisterPoolExportsGauges(t *testing.T) {
	metrics := NewMetrics()
	if err := metrics.RegisterPool("postgres", func() (int32, int32, int32) { return 3, 2, 5 }); err != nil {
		t.Fatalf("register pool: %v", err)
	}

	body := scrape(t, metrics)
	for _, want := range []string{
		`openxmart_pool_acquired_connections{pool="postgres"} 3`,
		`openxmart_pool_idle_connections{pool="postgres"} 2`,
		`openxmart_pool_total_connections{pool="postgres"} 5`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s, got: %s", want, body)
		}
	}

	if err := metrics.RegisterPool("postgres", func() (int32, int32, int32) { return 0, 0, 0 }); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
