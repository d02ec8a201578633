package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	DiscoveryRuns.Inc()
	DiscoveryErrors.Inc()
	IncSkip("no_data")
	IncAPIRetry("search_recent")
	ObserveDiscoveryDuration(time.Now().Add(-1500 * time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"memescout_discovery_runs_total",
		"memescout_discovery_errors_total",
		"memescout_discovery_duration_seconds",
		"memescout_candidates_skipped_total",
		"memescout_api_retries_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
