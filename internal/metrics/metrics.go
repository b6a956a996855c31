package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bjorkvang",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bjorkvang",
			Name:      "bookings_total",
			Help:      "Admitted bookings by initial status.",
		},
		[]string{"status"},
	)

	conflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bjorkvang",
			Name:      "booking_conflicts_total",
			Help:      "Submissions rejected by the conflict gate.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bjorkvang",
			Name:      "notifications_total",
			Help:      "Notification delivery attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, conflicts, notifications)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBooking counts an admitted booking by its initial status.
func IncBooking(status string) {
	bookings.WithLabelValues(status).Inc()
}

// IncConflict counts a submission refused by the conflict gate.
func IncConflict() {
	conflicts.Inc()
}

// IncNotification counts a delivery attempt result ("sent", "retry", "failed").
func IncNotification(result string) {
	notifications.WithLabelValues(result).Inc()
}
