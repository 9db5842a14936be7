package observability

import (
	"market-node/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics of the action pipeline. A nil *Metrics records nothing.
type Metrics struct {
	messagesHandled      *prometheus.CounterVec
	sends                *prometheus.CounterVec
	notifications        *prometheus.CounterVec
	pendingBatch         prometheus.Gauge
	transportEnvelopes   prometheus.Counter
	processingDurationMs prometheus.Histogram
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		messagesHandled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_messages_handled_total",
				Help: "Incoming transport messages handled, by action and resulting status",
			},
			[]string{"action", "status"},
		),
		sends: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_sends_total",
				Help: "Outgoing actions, by action and send status",
			},
			[]string{"action", "status"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_notifications_total",
				Help: "Notifications handed to the sink",
			},
			[]string{"result"}, // "published" or "failed"
		),
		pendingBatch: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "market_pending_batch_size",
				Help: "Size of the last pending batch swept by the message processor",
			},
		),
		transportEnvelopes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "market_transport_envelopes_total",
				Help: "Envelopes received from the transport",
			},
		),
		processingDurationMs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "market_message_processing_milliseconds",
				Help:    "Time spent handling one incoming transport message",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
	}
}

func (m *Metrics) MessageHandled(action domain.ActionType, status domain.MessageStatus, durationMs float64) {
	if m == nil {
		return
	}
	if action == "" {
		action = "NONE"
	}
	m.messagesHandled.WithLabelValues(string(action), string(status)).Inc()
	m.processingDurationMs.Observe(durationMs)
}

func (m *Metrics) SendCompleted(action domain.ActionType, status domain.SendStatus) {
	if m == nil {
		return
	}
	m.sends.WithLabelValues(string(action), string(status)).Inc()
}

func (m *Metrics) NotificationPublished(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.notifications.WithLabelValues("failed").Inc()
		return
	}
	m.notifications.WithLabelValues("published").Inc()
}

func (m *Metrics) PendingBatch(size int) {
	if m == nil {
		return
	}
	m.pendingBatch.Set(float64(size))
}

func (m *Metrics) EnvelopesReceived(count int) {
	if m == nil {
		return
	}
	m.transportEnvelopes.Add(float64(count))
}
