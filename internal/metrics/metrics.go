// Package metrics collects and exposes Prometheus metrics: HTTP traffic by
// route and status, request latency, and the auth funnel (signups, login
// outcomes, refreshes).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the application's metrics.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	requestDuration prometheus.Histogram
	signups         prometheus.Counter
	logins          *prometheus.CounterVec
	refreshes       prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventplanner_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventplanner_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventplanner_signups_total",
			Help: "Accounts created.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventplanner_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventplanner_token_refreshes_total",
			Help: "Access tokens minted from refresh tokens.",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.requestDuration,
		c.signups,
		c.logins,
		c.refreshes,
	)

	return c
}

// RecordRequest counts a finished HTTP request and its latency.
func (c *Collector) RecordRequest(method string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

// RecordSignup counts a successful registration.
func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordLogin counts a login attempt. Result is "success" or "failure".
func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

// RecordRefresh counts a successful token refresh.
func (c *Collector) RecordRefresh() {
	c.refreshes.Inc()
}

// Handler returns the HTTP handler serving the /metrics scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
