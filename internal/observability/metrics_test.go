package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func serveWithRoute(t *testing.T, metrics *Metrics, route string, status int) {
	t.Helper()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, route)

	req := httptest.NewRequest(http.MethodGet, route, nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d", status, rr.Code)
	}
}

func scrape(metrics *Metrics) string {
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	serveWithRoute(t, metrics, "/test", http.StatusTeapot)

	body := scrape(metrics)
	if !strings.Contains(body, `factecho_http_requests_total{code="418",route="/test"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `factecho_http_request_duration_seconds_bucket{route="/test"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestMetricsMiddlewareCountsDenials(t *testing.T) {
	metrics := NewMetrics()

	serveWithRoute(t, metrics, "/api/users", http.StatusUnauthorized)
	serveWithRoute(t, metrics, "/api/users", http.StatusForbidden)
	serveWithRoute(t, metrics, "/api/articles", http.StatusOK)

	body := scrape(metrics)
	if !strings.Contains(body, `factecho_auth_denials_total{code="401"} 1`) {
		t.Fatalf("expected 401 denial to be counted, got: %s", body)
	}
	if !strings.Contains(body, `factecho_auth_denials_total{code="403"} 1`) {
		t.Fatalf("expected 403 denial to be counted, got: %s", body)
	}
	if strings.Contains(body, `factecho_auth_denials_total{code="200"}`) {
		t.Fatalf("2xx responses must not count as denials, got: %s", body)
	}
}
