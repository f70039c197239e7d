// Package metrics holds the Prometheus collectors for history mutations,
// persistence failures and HTTP requests.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "setsreps"

// Manager groups the collectors. A nil *Manager is valid and records nothing,
// so packages can take one without tests having to build a registry.
type Manager struct {
	// counters
	CounterWorkoutsFinished prometheus.Counter
	CounterWorkoutsEdited   prometheus.Counter
	CounterWorkoutsDeleted  prometheus.Counter
	CounterHistoryCleared   prometheus.Counter
	CounterWorkoutsImported prometheus.Counter
	CounterPersistFailures  prometheus.Counter
	CounterRequests         *prometheus.CounterVec

	// gauges
	GaugeHistorySize prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager(prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager(reg), reg
}

func NewManager(reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	return &Manager{
		CounterWorkoutsFinished: counter("workouts_finished_total", "Sessions finished into completed workouts"),
		CounterWorkoutsEdited:   counter("workouts_edited_total", "Stored workouts edited (exercises or times)"),
		CounterWorkoutsDeleted:  counter("workouts_deleted_total", "Stored workouts deleted"),
		CounterHistoryCleared:   counter("history_cleared_total", "Times the whole history was cleared"),
		CounterWorkoutsImported: counter("workouts_imported_total", "Workouts added by import or sync"),
		CounterPersistFailures:  counter("persist_failures_total", "History writes that failed and were kept in memory only"),
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		GaugeHistorySize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_size",
			Help:      "Workouts currently held in history",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

func (m *Manager) WorkoutFinished() {
	if m != nil {
		m.CounterWorkoutsFinished.Inc()
	}
}

func (m *Manager) WorkoutEdited() {
	if m != nil {
		m.CounterWorkoutsEdited.Inc()
	}
}

func (m *Manager) WorkoutDeleted() {
	if m != nil {
		m.CounterWorkoutsDeleted.Inc()
	}
}

func (m *Manager) HistoryCleared() {
	if m != nil {
		m.CounterHistoryCleared.Inc()
	}
}

func (m *Manager) WorkoutsImported(n int) {
	if m != nil && n > 0 {
		m.CounterWorkoutsImported.Add(float64(n))
	}
}

func (m *Manager) PersistFailed() {
	if m != nil {
		m.CounterPersistFailures.Inc()
	}
}

func (m *Manager) SetHistorySize(n int) {
	if m != nil {
		m.GaugeHistorySize.Set(float64(n))
	}
}

// ObserveRequest records one served HTTP request.
func (m *Manager) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.CounterRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HistRequestDuration.Observe(d.Seconds())
}
