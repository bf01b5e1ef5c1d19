// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milo_http_requests_total",
		Help: "HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "milo_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
	}, []string{"route"})

	AuditGrades = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milo_audit_grades_total",
		Help: "Audit results by variant and letter grade",
	}, []string{"variant", "grade"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milo_rate_limited_total",
		Help: "Requests rejected by a rate limiter",
	}, []string{"limiter"})

	ChatReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milo_chat_replies_total",
		Help: "Chat outcomes: answered, blocked, empty or error",
	}, []string{"outcome"})

	LeadsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "milo_leads_captured_total",
		Help: "Valid email submissions accepted",
	})
)
