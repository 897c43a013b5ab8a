package metrics

import (
	"testing"

	"marafon/internal/events"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	// IncHTTP should not panic
	assert.NotPanics(t, func() {
		IncHTTP("test_endpoint")
	})
}

func TestObserveEvent(t *testing.T) {
	bus := events.NewEventBus()
	Subscribe(bus)

	beforeApproved := testutil.ToFloat64(domainEvents.WithLabelValues(events.EventPaymentApproved))
	beforeRevenue := testutil.ToFloat64(revenueApproved.WithLabelValues("vip"))

	require.NoError(t, bus.PublishJSON(events.EventPaymentApproved, events.PaymentEventPayload{PaymentID: 1, CourseKey: "vip", Amount: 597000}))
	require.NoError(t, bus.PublishJSON(events.EventPaymentRejected, events.PaymentEventPayload{PaymentID: 2, CourseKey: "vip", Amount: 597000}))

	assert.Equal(t, beforeApproved+1, testutil.ToFloat64(domainEvents.WithLabelValues(events.EventPaymentApproved)))
	assert.Equal(t, beforeRevenue+597000, testutil.ToFloat64(revenueApproved.WithLabelValues("vip")))
}

func TestObserveEventBadPayload(t *testing.T) {
	err := ObserveEvent(&events.Event{Type: events.EventPaymentApproved, Payload: []byte("{")})
	assert.Error(t, err)
}
