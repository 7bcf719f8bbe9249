package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	repositoryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_repository_operations_total",
			Help: "Total repository operations by outcome",
		},
		[]string{"operation", "status"},
	)

	snapshotDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_snapshot_duration_seconds",
			Help:    "Duration of snapshot saves and loads",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "status"},
	)

	collectionEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "booking_collection_entities",
			Help: "Current number of entities per collection",
		},
		[]string{"collection"},
	)

	orderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_order_transitions_total",
			Help: "Order status transitions observed by the repository",
		},
		[]string{"from", "to"},
	)
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Monitor records repository metrics. A nil *Monitor records nothing.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func outcome(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// Track repository operations
func (m *Monitor) TrackOperation(operation string, err error) {
	if m == nil {
		return
	}
	repositoryOperations.WithLabelValues(operation, outcome(err)).Inc()
}

// Track snapshot save/load duration
func (m *Monitor) TrackSnapshot(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	snapshotDuration.WithLabelValues(operation, outcome(err)).Observe(time.Since(started).Seconds())
}

func (m *Monitor) SetCollectionSize(collection string, size int) {
	if m == nil {
		return
	}
	collectionEntities.WithLabelValues(collection).Set(float64(size))
}

func (m *Monitor) TrackOrderTransition(from, to string) {
	if m == nil {
		return
	}
	orderTransitions.WithLabelValues(from, to).Inc()
}
