package confidential

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opDeposit  = "deposit"
	opTransfer = "transfer"
	opWithdraw = "withdraw"
)

// Metrics collects operation counters and timing histograms. A nil *Metrics
// is valid and records nothing, so instrumentation stays optional.
type Metrics struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec

	decryptDuration prometheus.Histogram
	scanDuration    prometheus.Histogram
	scanCandidates  prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zeraprivacy",
			Name:      "operations_total",
			Help:      "Confidential operations submitted, by operation.",
		}, []string{"op"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zeraprivacy",
			Name:      "operation_failures_total",
			Help:      "Confidential operations that failed, by operation.",
		}, []string{"op"}),
		decryptDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zeraprivacy",
			Name:      "decrypt_duration_seconds",
			Help:      "Wall time of balance decryption, dominated by the discrete-log search.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zeraprivacy",
			Name:      "scan_duration_seconds",
			Help:      "Wall time of payment scans.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		scanCandidates: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zeraprivacy",
			Name:      "scan_candidates",
			Help:      "Announcements checked per payment scan.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
}

func (m *Metrics) incOp(op string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op).Inc()
}

func (m *Metrics) incFailure(op string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(op).Inc()
}

func (m *Metrics) observeDecrypt(d time.Duration) {
	if m == nil {
		return
	}
	m.decryptDuration.Observe(d.Seconds())
}

func (m *Metrics) observeScan(d time.Duration, candidates int) {
	if m == nil {
		return
	}
	m.scanDuration.Observe(d.Seconds())
	m.scanCandidates.Observe(float64(candidates))
}
