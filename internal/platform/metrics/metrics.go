package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	UsersRegistered prometheus.Counter
	Logins          *prometheus.CounterVec

	Submissions         *prometheus.CounterVec
	EligibilityDenials  *prometheus.CounterVec
	CVUploadLatency     prometheus.Histogram
	OrphanedBlobs       prometheus.Counter
	LockFallbacks       prometheus.Counter
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_users_registered_total",
			Help: "Total number of users registered",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}), // outcome: "success", "failure"

		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_application_submissions_total",
			Help: "Application submissions by outcome",
		}, []string{"outcome"}), // outcome: "created", "ineligible", "upload_failed", "store_failed", "duplicate"

		EligibilityDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_eligibility_denials_total",
			Help: "Eligibility evaluations that denied an application, by reason",
		}, []string{"reason"}),

		CVUploadLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobboard_cv_upload_duration_seconds",
			Help:    "Duration of CV uploads to blob storage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		OrphanedBlobs: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_orphaned_cv_blobs_total",
			Help: "CV blobs uploaded for applications that failed to persist",
		}),

		LockFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_submission_lock_fallbacks_total",
			Help: "Submission locks taken in-process because Redis was unavailable",
		}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobboard_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncrementUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

func (m *Metrics) IncrementLogin(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementSubmission(outcome string) {
	if m != nil {
		m.Submissions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementEligibilityDenial(reason string) {
	if m != nil {
		m.EligibilityDenials.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveCVUpload(d time.Duration) {
	if m != nil {
		m.CVUploadLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementOrphanedBlob() {
	if m != nil {
		m.OrphanedBlobs.Inc()
	}
}

func (m *Metrics) IncrementLockFallback() {
	if m != nil {
		m.LockFallbacks.Inc()
	}
}

// ObserveRequest satisfies the request package's LatencyObserver.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m != nil {
		m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
	}
}
