package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the domain counters and gauges.
type Metrics struct {
	AuthAttempts       *prometheus.CounterVec
	RemoteAuthFailures *prometheus.CounterVec
	BedAssignments     *prometheus.CounterVec
	Discharges         prometheus.Counter
	AppointmentChanges *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
	OccupiedBeds       prometheus.Gauge
}

// New creates the metrics and registers them with reg. A nil reg leaves
// them unregistered, which keeps tests independent of the default registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login and signup attempts by authenticator stage and result",
		}, []string{"operation", "stage", "result"}),
		RemoteAuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_auth_failures_total",
			Help:      "Remote authenticator failures that fell back to local credentials",
		}, []string{"reason"}),
		BedAssignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bed_assignments_total",
			Help:      "Bed assignment attempts by result",
		}, []string{"result"}),
		Discharges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discharges_total",
			Help:      "Patients discharged",
		}),
		AppointmentChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_transitions_total",
			Help:      "Appointment status transitions by target status",
		}, []string{"status"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications added to the feed by type",
		}, []string{"type"}),
		OccupiedBeds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "occupied_beds",
			Help:      "Beds currently holding a patient",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.AuthAttempts,
			m.RemoteAuthFailures,
			m.BedAssignments,
			m.Discharges,
			m.AppointmentChanges,
			m.Notifications,
			m.OccupiedBeds,
		)
	}
	return m
}

// NewNop returns unregistered metrics for tests and tools.
func NewNop() *Metrics {
	return New("test", nil)
}
