package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/alexivanou/cityinfo-api/internal/auth"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// routeTemplate labels a request by its route pattern to keep label cardinality bounded.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// loggingMiddleware writes one log line per request
func loggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", routeTemplate(r)),
				zap.String("path", r.URL.Path),
				zap.Int("status", m.Code),
				zap.Int64("bytes", m.Written),
				zap.Duration("duration", m.Duration),
			}
			if m.Code >= http.StatusInternalServerError {
				logger.Error("Request failed", fields...)
				return
			}
			logger.Info("Request handled", fields...)
		})
	}
}

// Metrics holds the Prometheus collectors for the HTTP layer
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates collectors on a dedicated registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cityinfo",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cityinfo",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snoop := httpsnoop.CaptureMetrics(next, w, r)
		route := routeTemplate(r)
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(snoop.Code)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(snoop.Duration.Seconds())
	})
}

// negotiationMiddleware answers 406 before the handler runs when no offered
// media type satisfies the Accept header.
func negotiationMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	rs := responder{logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if negotiate(r) == "" {
				rs.writeProblem(w, http.StatusNotAcceptable, "Not Acceptable",
					"None of the requested media types can be produced.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerAuthMiddleware requires a valid token in the Authorization header.
// A nil token service rejects every request.
func bearerAuthMiddleware(tokens *auth.TokenService, logger *zap.Logger) mux.MiddlewareFunc {
	rs := responder{logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				rs.writeProblem(w, http.StatusUnauthorized, "Unauthorized", "A bearer token is required.", nil)
				return
			}
			if tokens == nil {
				rs.writeProblem(w, http.StatusUnauthorized, "Unauthorized", "Tokens cannot be validated.", nil)
				return
			}
			if _, err := tokens.Validate(strings.TrimSpace(token)); err != nil {
				logger.Debug("Rejected bearer token", zap.Error(err))
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				rs.writeProblem(w, http.StatusUnauthorized, "Unauthorized", "The bearer token is invalid.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware sheds load once the shared token bucket is empty
func rateLimitMiddleware(limiter *rate.Limiter, logger *zap.Logger) mux.MiddlewareFunc {
	rs := responder{logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				rs.writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
