package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by the Service.
type Metrics struct {
	uploads        *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	lines          *prometheus.CounterVec
	snapshotUsers  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderimport",
			Name:      "uploads_total",
			Help:      "Uploads processed, by outcome.",
		}, []string{"status"}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orderimport",
			Name:      "upload_duration_seconds",
			Help:      "Time spent parsing and aggregating one upload.",
			Buckets:   prometheus.DefBuckets,
		}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderimport",
			Name:      "lines_total",
			Help:      "Input lines seen, split into valid and rejected.",
		}, []string{"result"}),
		snapshotUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orderimport",
			Name:      "snapshot_users",
			Help:      "Users in the current in-memory snapshot.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.uploads, m.uploadDuration, m.lines, m.snapshotUsers)
	}
	return m
}

// Upload outcomes used as the status label.
const (
	uploadOK       = "ok"
	uploadRejected = "rejected"
	uploadFailed   = "failed"
)

func (m *Metrics) observeUpload(status string, d time.Duration) {
	m.uploads.WithLabelValues(status).Inc()
	if status == uploadOK {
		m.uploadDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) observeLines(res AggregationResult) {
	m.lines.WithLabelValues("rejected").Add(float64(len(res.Errors)))
	valid := 0
	for _, u := range res.Users {
		for _, o := range u.Orders {
			valid += len(o.Products)
		}
	}
	m.lines.WithLabelValues("valid").Add(float64(valid))
}

func (m *Metrics) setSnapshotUsers(n int) {
	m.snapshotUsers.Set(float64(n))
}
