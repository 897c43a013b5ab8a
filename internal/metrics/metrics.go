package metrics

import (
	"sync"

	"marafon/internal/events"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marafon"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Domain events published on the bus by type.",
		},
		[]string{"type"},
	)

	revenueApproved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approved_revenue_total",
			Help:      "Sum of approved payment amounts by course.",
		},
		[]string{"course"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, domainEvents, revenueApproved)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// ObserveEvent counts bus events; approved payments also add to revenue.
func ObserveEvent(ev *events.Event) error {
	domainEvents.WithLabelValues(ev.Type).Inc()
	if ev.Type != events.EventPaymentApproved {
		return nil
	}

	var p events.PaymentEventPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	revenueApproved.WithLabelValues(p.CourseKey).Add(float64(p.Amount))
	return nil
}

// Subscribe attaches ObserveEvent to every domain event type.
func Subscribe(bus *events.EventBus) {
	for _, t := range []string{
		events.EventUserRegistered,
		events.EventPaymentSubmitted,
		events.EventPaymentApproved,
		events.EventPaymentRejected,
	} {
		bus.Subscribe(t, ObserveEvent)
	}
}
