package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the booking service.
type Metrics struct {
	BookingsTotal         prometheus.Counter
	BookingConflictsTotal prometheus.Counter
	TransitionsTotal      *prometheus.CounterVec
}

// New creates and registers all metrics against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "booking_api_bookings_total",
			Help: "Total number of slots successfully booked",
		}),
		BookingConflictsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "booking_api_booking_conflicts_total",
			Help: "Total number of bookings rejected because the slot was no longer available",
		}),
		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_api_appointment_transitions_total",
			Help: "Total number of appointment status transitions",
		}, []string{"status"}),
	}
}

func (m *Metrics) IncBookings()         { m.BookingsTotal.Inc() }
func (m *Metrics) IncBookingConflicts() { m.BookingConflictsTotal.Inc() }

func (m *Metrics) IncTransition(status string) {
	m.TransitionsTotal.WithLabelValues(status).Inc()
}
