// Package observability provides Prometheus metrics and gin middleware
// for monitoring the prontuario server.
package observability

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// RequestsTotal counts HTTP requests by method, route template and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prontuario_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prontuario_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prontuario_logins_total",
			Help: "Login attempts",
		},
		[]string{"outcome"},
	)

	// RegistrationsTotal counts account registrations by outcome.
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prontuario_registrations_total",
			Help: "Account registrations",
		},
		[]string{"outcome"},
	)

	// PrescriptionUploadsTotal counts prescription uploads by outcome and
	// whether a file was attached.
	PrescriptionUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prontuario_prescription_uploads_total",
			Help: "Prescription uploads",
		},
		[]string{"outcome", "attachment"},
	)

	// AuthRejectionsTotal counts requests turned away by the auth gate.
	AuthRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prontuario_auth_rejections_total",
			Help: "Requests rejected by the auth gate",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		LoginsTotal,
		RegistrationsTotal,
		PrescriptionUploadsTotal,
		AuthRejectionsTotal,
	)
}
