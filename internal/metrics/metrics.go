package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	DBQueryDuration   *prometheus.HistogramVec
	RealtimePushes    *prometheus.CounterVec
	AssignmentsMade   prometheus.Counter
	AssignmentDenials *prometheus.CounterVec
	HostRejections    prometheus.Counter
}

// NewMetrics creates and registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'filter_tasks', 'count_tasks', 'list_leads'
		RealtimePushes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "crm_realtime_pushes_total",
			Help: "Realtime events published to user channels.",
		}, []string{"event", "status"}),
		AssignmentsMade: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "crm_assignments_total",
			Help: "ToDo rows created by the assignment subsystem.",
		}),
		AssignmentDenials: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "crm_assignment_denials_total",
			Help: "Assignment attempts rejected by the access policy.",
		}, []string{"tier"}),
		HostRejections: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "crm_oauth_host_rejections_total",
			Help: "OAuth config requests rejected by host validation.",
		}),
	}

	m.RealtimePushes.WithLabelValues("crm_portal_notification", "success")
	m.RealtimePushes.WithLabelValues("crm_portal_notification", "failure")

	return m
}

// ObserveQuery records the time elapsed since start. A nil receiver is a no-op
// so repositories can run without metrics in tests.
//
//	defer m.ObserveQuery("filter_tasks", time.Now())
func (m *Metrics) ObserveQuery(queryType string, start time.Time) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
}
