package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_searches_total",
			Help: "Total number of lead searches, by outcome (cache_hit, provider, error)",
		},
		[]string{"outcome"},
	)

	leadsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_persisted_total",
			Help: "Total number of new leads persisted",
		},
	)

	duplicatesExcluded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_duplicates_excluded_total",
			Help: "Total number of candidate leads excluded as duplicates",
		},
	)

	providerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_provider_errors_total",
			Help: "Total number of enrichment provider errors",
		},
		[]string{"kind"},
	)

	followUpsQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "followups_queued_total",
			Help: "Total number of follow-up emails queued",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordSearch(outcome string) {
	searchesTotal.WithLabelValues(outcome).Inc()
}

func RecordLeadsPersisted(n int) {
	leadsPersisted.Add(float64(n))
}

func RecordDuplicatesExcluded(n int) {
	duplicatesExcluded.Add(float64(n))
}

func RecordProviderError(kind string) {
	providerErrors.WithLabelValues(kind).Inc()
}

func RecordFollowUpQueued() {
	followUpsQueued.Inc()
}
