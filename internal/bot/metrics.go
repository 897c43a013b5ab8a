package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	UpdatesTotal         *prometheus.CounterVec
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	Registrations        prometheus.Counter
	PaymentsSubmitted    *prometheus.CounterVec
	PaymentsDecided      *prometheus.CounterVec
	BroadcastDeliveries  *prometheus.CounterVec
}

// NewMetrics создает метрики в указанном реестре (nil - реестр по умолчанию).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		UpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_updates_total",
			Help: "Total number of processed updates by resolved action",
		}, []string{"action"}),

		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of panics recovered in update handlers",
		}),

		UpdateProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_registrations_total",
			Help: "Total number of completed registrations",
		}),

		PaymentsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_payments_submitted_total",
			Help: "Total number of submitted receipts",
		}, []string{"course"}),

		PaymentsDecided: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_payments_decided_total",
			Help: "Total number of payment decisions",
		}, []string{"status"}),

		BroadcastDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_broadcast_deliveries_total",
			Help: "Broadcast deliveries by result",
		}, []string{"result"}),
	}
}
