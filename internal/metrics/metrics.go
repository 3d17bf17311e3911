package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tlekit_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tlekit_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	parseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tlekit_parse_total",
			Help: "Total parse/validate invocations by entry point and outcome.",
		},
		[]string{"entry", "outcome"},
	)

	parseIssuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tlekit_parse_issues_total",
			Help: "Total diagnostics emitted, by code and severity.",
		},
		[]string{"code", "severity"},
	)

	recoveryActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tlekit_recovery_actions_total",
			Help: "Total recovery actions taken by the state-machine parser.",
		},
		[]string{"action"},
	)

	datasetSatellites = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tlekit_dataset_satellites",
			Help: "Number of satellites in the current catalog snapshot.",
		},
	)

	datasetAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tlekit_dataset_age_seconds",
			Help: "Age of the current catalog snapshot in seconds.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(parseTotal)
	prometheus.MustRegister(parseIssuesTotal)
	prometheus.MustRegister(recoveryActionsTotal)
	prometheus.MustRegister(datasetSatellites)
	prometheus.MustRegister(datasetAgeSeconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncParse records one parse/validate invocation.
func IncParse(entry, outcome string) {
	parseTotal.WithLabelValues(entry, outcome).Inc()
}

// IncIssue records one emitted diagnostic.
func IncIssue(code, severity string) {
	parseIssuesTotal.WithLabelValues(code, severity).Inc()
}

// IncRecoveryAction records one state-machine recovery action.
func IncRecoveryAction(action string) {
	recoveryActionsTotal.WithLabelValues(action).Inc()
}

// SetDatasetCount updates the catalog satellite count gauge.
func SetDatasetCount(n int) {
	datasetSatellites.Set(float64(n))
}

// SetDatasetAge updates the catalog age gauge.
func SetDatasetAge(seconds float64) {
	datasetAgeSeconds.Set(seconds)
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(r.URL.Path, r.Method).Observe(duration)
	})
}
