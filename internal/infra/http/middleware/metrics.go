package middleware

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of requests sent to the campaign backend",
		},
		[]string{"method", "route", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Duration of backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	statusRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_http_requests_total",
			Help: "Total number of requests served by the local status server",
		},
		[]string{"method", "route", "status"},
	)

	audienceMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audience_mutations_total",
			Help: "Total number of audience mutations by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	staleResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audience_stale_responses_total",
			Help: "Total number of fetch responses discarded because a newer cycle started",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

// ids (uuid ou numéricos) viram ":id" para não explodir a cardinalidade
var idSegment = regexp.MustCompile(`/([0-9a-fA-F-]{8,}|\d+)(/|$)`)

func routeOf(path string) string {
	for {
		next := idSegment.ReplaceAllString(path, "/:id$2")
		if next == path {
			return path
		}
		path = next
	}
}

// InstrumentedTransport records every backend call made through it.
type InstrumentedTransport struct {
	Next http.RoundTripper
}

func NewInstrumentedTransport(next http.RoundTripper) *InstrumentedTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &InstrumentedTransport{Next: next}
}

func (t *InstrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	route := routeOf(req.URL.Path)

	resp, err := t.Next.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	} else {
		RecordIntegrationError("backend")
	}
	backendRequestsTotal.WithLabelValues(req.Method, route, status).Inc()
	backendRequestDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	return resp, err
}

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
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		statusRequestsTotal.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(rw.statusCode)).Inc()
	})
}

// routePattern returns the matched chi pattern, or "unmatched" for paths no
// route served.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func RecordAudienceMutation(action, outcome string) {
	audienceMutations.WithLabelValues(action, outcome).Inc()
}

func RecordStaleResponse() {
	staleResponses.Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
