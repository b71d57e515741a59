package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neocc_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neocc_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neocc_fetch_total",
			Help: "Upstream report fetches by request kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	fetchDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neocc_fetch_duration_seconds",
			Help:    "Upstream report fetch duration in seconds, retries included.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)

	decodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neocc_decode_total",
			Help: "Report decodes by tab and outcome.",
		},
		[]string{"tab", "outcome"},
	)

	queriesRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neocc_queries_rejected_total",
			Help: "Object queries refused because a concurrency limit was reached.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(fetchTotal)
	prometheus.MustRegister(fetchDurationSeconds)
	prometheus.MustRegister(decodeTotal)
	prometheus.MustRegister(queriesRejectedTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordFetch records one upstream fetch.
func RecordFetch(kind, outcome string, d time.Duration) {
	fetchTotal.WithLabelValues(kind, outcome).Inc()
	fetchDurationSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordDecode records the outcome of decoding one tab.
func RecordDecode(tab, outcome string) {
	decodeTotal.WithLabelValues(tab, outcome).Inc()
}

// IncQueriesRejected counts one query refused by the limiter.
func IncQueriesRejected() {
	queriesRejectedTotal.Inc()
}

var knownRoutes = map[string]bool{
	"/healthz":     true,
	"/readyz":      true,
	"/metrics":     true,
	"/api/v1/tabs": true,
}

const objectsPrefix = "/api/v1/objects/"

// normalizeRoute maps a request path to a bounded label set so object
// names do not explode metric cardinality.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if rest, ok := strings.CutPrefix(path, objectsPrefix); ok {
		parts := strings.Split(rest, "/")
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return objectsPrefix + "{object}/{tab}"
		}
	}
	return "other"
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
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
