package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the dashboard's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Loads           *prometheus.CounterVec
	SweepCandidates prometheus.Counter
	SweepCancelled  prometheus.Counter
	SweepFailures   prometheus.Counter
	SweepDuration   prometheus.Histogram
	Mutations       *prometheus.CounterVec
	DoctorCache     *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_loads_total",
			Help:      "Appointment collection loads by result",
		}, []string{"result"}),
		SweepCandidates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_candidates_total",
			Help:      "Missed appointments selected by the auto-cancellation sweep",
		}),
		SweepCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_cancelled_total",
			Help:      "Appointments cancelled by the sweep",
		}),
		SweepFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_failures_total",
			Help:      "Sweep cancellations that failed",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time taken by one sweep pass",
			Buckets:   prometheus.DefBuckets,
		}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_mutations_total",
			Help:      "Approve, update and cancel requests by result",
		}, []string{"operation", "result"}),
		DoctorCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doctor_cache_lookups_total",
			Help:      "Doctor list cache lookups by outcome",
		}, []string{"outcome"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveLoad counts one collection load.
func (m *Metrics) ObserveLoad(err error) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(result(err)).Inc()
}

// ObserveSweep records the outcome of one sweep pass.
func (m *Metrics) ObserveSweep(candidates, cancelled, failed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SweepCandidates.Add(float64(candidates))
	m.SweepCancelled.Add(float64(cancelled))
	m.SweepFailures.Add(float64(failed))
	m.SweepDuration.Observe(elapsed.Seconds())
}

// ObserveMutation counts one approve/update/cancel request.
func (m *Metrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(operation, result(err)).Inc()
}

// ObserveDoctorCache counts a cache hit, miss or error.
func (m *Metrics) ObserveDoctorCache(outcome string) {
	if m == nil {
		return
	}
	m.DoctorCache.WithLabelValues(outcome).Inc()
}
