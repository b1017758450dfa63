package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	SessionsStarted     prometheus.Counter
	AnswersServed       *prometheus.CounterVec
	ProviderFailures    *prometheus.CounterVec
	QuotaDenied         prometheus.Counter
	EntitlementsGranted *prometheus.CounterVec
	CheckoutsCreated    prometheus.Counter
}

// New creates a new Metrics instance registered on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers every metric on reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path", "status"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000},
			},
			[]string{"method", "path"},
		),

		// Business metrics
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "brainbuddy_sessions_started_total",
			Help: "Total number of sign-ins",
		}),
		AnswersServed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brainbuddy_answers_total",
				Help: "Answers delivered, by the tier that produced them",
			},
			[]string{"source"}, // local, hosted, template
		),
		ProviderFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brainbuddy_provider_failures_total",
				Help: "Answer providers that were unavailable",
			},
			[]string{"provider"},
		),
		QuotaDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "brainbuddy_quota_denied_total",
			Help: "Questions rejected because the daily quota was used up",
		}),
		EntitlementsGranted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brainbuddy_entitlements_granted_total",
				Help: "Premium entitlements granted",
			},
			[]string{"via"}, // return, webhook
		),
		CheckoutsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "brainbuddy_checkouts_created_total",
			Help: "Checkout sessions created",
		}),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, not the raw URL

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, status).Observe(time.Since(start).Seconds())
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// AnswerServed increments the answers counter for source
func (m *Metrics) AnswerServed(source string) {
	if m == nil {
		return
	}
	m.AnswersServed.WithLabelValues(source).Inc()
}

// ProviderFailed increments the failure counter for provider
func (m *Metrics) ProviderFailed(provider string) {
	if m == nil {
		return
	}
	m.ProviderFailures.WithLabelValues(provider).Inc()
}

// RecordSessionStarted increments the sign-in counter
func (m *Metrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

// RecordQuotaDenied increments the denied counter
func (m *Metrics) RecordQuotaDenied() {
	if m == nil {
		return
	}
	m.QuotaDenied.Inc()
}

// RecordEntitlementGranted increments the grant counter
func (m *Metrics) RecordEntitlementGranted(via string) {
	if m == nil {
		return
	}
	m.EntitlementsGranted.WithLabelValues(via).Inc()
}

// RecordCheckoutCreated increments the checkout counter
func (m *Metrics) RecordCheckoutCreated() {
	if m == nil {
		return
	}
	m.CheckoutsCreated.Inc()
}
