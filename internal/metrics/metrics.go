// Package metrics exposes Prometheus collectors for the listing scraper.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeRendered labels pages that produced a report.
const OutcomeRendered = "rendered"

var (
	scraperPagesTotal           *prometheus.CounterVec
	scraperBytesTotal           *prometheus.CounterVec
	scraperFetchDurationSeconds *prometheus.HistogramVec
	scraperRetriesTotal         *prometheus.CounterVec
	scraperActiveWorkers        prometheus.Gauge
	scraperRunsTotal            prometheus.Counter
	scraperRunDurationSeconds   prometheus.Histogram
	httpRequestsTotal           *prometheus.CounterVec
	httpRequestDurationSeconds  *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scraperPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Total number of listing pages processed, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		scraperBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_bytes_total",
				Help: "Total number of bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)

		scraperFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by site.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"site"},
		)

		scraperRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_fetch_retries_total",
				Help: "Total number of fetch retries, labeled by site.",
			},
			[]string{"site"},
		)

		scraperActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_active_workers",
				Help: "Number of workers currently processing a partition.",
			},
		)

		scraperRunsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_runs_total",
				Help: "Total number of completed scrape runs.",
			},
		)

		scraperRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scraper_run_duration_seconds",
				Help:    "Histogram of whole-run durations.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests served, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage counts one processed page. outcome is OutcomeRendered or a failure kind.
func ObservePage(site string, outcome string) {
	scraperPagesTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveFetch records the latency and size of a successful fetch.
func ObserveFetch(site string, duration time.Duration, bytesFetched int) {
	sanitizedSite := SanitizeSite(site)
	scraperFetchDurationSeconds.WithLabelValues(sanitizedSite).Observe(duration.Seconds())
	if bytesFetched > 0 {
		scraperBytesTotal.WithLabelValues(sanitizedSite).Add(float64(bytesFetched))
	}
}

// ObserveRetry increments the retry counter for site.
func ObserveRetry(site string) {
	scraperRetriesTotal.WithLabelValues(SanitizeSite(site)).Inc()
}

// ObserveRun records a finished run.
func ObserveRun(duration time.Duration) {
	scraperRunsTotal.Inc()
	scraperRunDurationSeconds.Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	scraperActiveWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	scraperActiveWorkers.Dec()
}
