package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DiscoveryRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memescout_discovery_runs_total",
		Help: "Total discovery runs",
	})
	DiscoveryErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memescout_discovery_errors_total",
		Help: "Total discovery or persistence errors",
	})
	DiscoveryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "memescout_discovery_duration_seconds",
		Help:    "Discovery run duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	CandidatesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "memescout_candidates_skipped_total",
		Help: "Candidates skipped during discovery, by reason",
	}, []string{"reason"})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "memescout_api_retries_total",
		Help: "Total API retry attempts",
	}, []string{"endpoint"})
)

func init() {
	prometheus.MustRegister(DiscoveryRuns, DiscoveryErrors, DiscoveryDuration, CandidatesSkipped, APIRetries)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveDiscoveryDuration records a run duration.
func ObserveDiscoveryDuration(start time.Time) {
	DiscoveryDuration.Observe(time.Since(start).Seconds())
}

// IncSkip counts a skipped candidate by reason.
func IncSkip(reason string) { CandidatesSkipped.WithLabelValues(reason).Inc() }

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }
