package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lending"

type Metrics struct {
	Borrows       *prometheus.CounterVec
	Returns       *prometheus.CounterVec
	FinesAssessed prometheus.Counter
	Payments      prometheus.Counter
	Notifications *prometheus.CounterVec
	ScanDuration  *prometheus.HistogramVec
}

// New creates the lending collectors and registers them on reg, which may be nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Borrows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "borrows_total",
			Help:      "Borrow attempts by result.",
		}, []string{"result"}),
		Returns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_total",
			Help:      "Returns by status.",
		}, []string{"status"}),
		FinesAssessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_assessed_amount_total",
			Help:      "Sum of fines created on late returns.",
		}),
		Payments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Recorded payments.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification attempts by kind and result.",
		}, []string{"kind", "result"}),
		ScanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of reminder and stock scans.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"scan"}),
	}
	if reg != nil {
		reg.MustRegister(m.Borrows, m.Returns, m.FinesAssessed, m.Payments, m.Notifications, m.ScanDuration)
	}
	return m
}

func (m *Metrics) ObserveScan(scan string, started time.Time) {
	m.ScanDuration.WithLabelValues(scan).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Notified(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Notifications.WithLabelValues(kind, result).Inc()
}
