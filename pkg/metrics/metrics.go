package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Relay metrics
	RelayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glvault_relay_requests_total",
			Help: "Total number of relayed requests by upstream status code",
		},
		[]string{"status"},
	)

	RelayRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glvault_relay_request_duration_seconds",
			Help:    "End-to-end relay handler duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	QuotaRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "glvault_quota_rejected_total",
			Help: "Total number of relays rejected for exceeding their alias's quota window",
		},
	)

	// Credential store metrics
	CredentialsRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "glvault_credentials_registered_total",
			Help: "Total number of credentials registered",
		},
	)

	CredentialsRotatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "glvault_credentials_rotated_total",
			Help: "Total number of credential rotations",
		},
	)

	CredentialsRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "glvault_credentials_removed_total",
			Help: "Total number of credentials removed",
		},
	)

	CredentialsRegisteredGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "glvault_credentials_registered",
			Help: "Current number of registered aliases",
		},
	)

	// Audit log metrics
	AuditEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "glvault_audit_entries_total",
			Help: "Total number of audit entries appended",
		},
	)

	// Admin API metrics
	AdminRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glvault_admin_requests_total",
			Help: "Total number of administration API requests by route and status",
		},
		[]string{"route", "status"},
	)
)

func init() {
	prometheus.MustRegister(RelayRequestsTotal)
	prometheus.MustRegister(RelayRequestDuration)
	prometheus.MustRegister(QuotaRejectedTotal)
	prometheus.MustRegister(CredentialsRegisteredTotal)
	prometheus.MustRegister(CredentialsRotatedTotal)
	prometheus.MustRegister(CredentialsRemovedTotal)
	prometheus.MustRegister(CredentialsRegisteredGauge)
	prometheus.MustRegister(AuditEntriesTotal)
	prometheus.MustRegister(AdminRequestsTotal)
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRelay records one completed relay's outcome and latency, as
// measured by t since the handler started processing the request.
func RecordRelay(status int, t *Timer) {
	RelayRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	t.ObserveDuration(RelayRequestDuration)
}

// RecordQuotaRejected records one relay rejected for exceeding quota.
func RecordQuotaRejected() {
	QuotaRejectedTotal.Inc()
}

// RecordAuditEntry records one audit entry successfully appended.
func RecordAuditEntry() {
	AuditEntriesTotal.Inc()
}

// RecordAdminRequest records one administration API request.
func RecordAdminRequest(route string, status int) {
	AdminRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
