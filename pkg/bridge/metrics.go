package bridge

import (
	"ircord/pkg/relay"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ircord"

// metrics records relay outcomes as Prometheus counters.
type metrics struct {
	messages      *prometheus.CounterVec
	linesSent     *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	sendFailures  *prometheus.CounterVec
	receiveErrors *prometheus.CounterVec
}

var _ relay.Recorder = (*metrics)(nil)

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "messages_total",
			Help:      "Inbound messages that passed filtering and mapping.",
		}, []string{"direction"}),
		linesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "lines_sent_total",
			Help:      "Outbound lines delivered to the target network.",
		}, []string{"direction"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "dropped_total",
			Help:      "Inbound events that produced no sends, by reason.",
		}, []string{"direction", "reason"}),
		sendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "send_failures_total",
			Help:      "Outbound sends that returned an error.",
		}, []string{"direction"}),
		receiveErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "receive_errors_total",
			Help:      "Non-terminal receive errors from the source network.",
		}, []string{"direction"}),
	}

	reg.MustRegister(m.messages, m.linesSent, m.dropped, m.sendFailures, m.receiveErrors)
	return m
}

func (m *metrics) MessageRelayed(dir relay.Direction) {
	m.messages.WithLabelValues(dir.String()).Inc()
}

func (m *metrics) LineSent(dir relay.Direction) {
	m.linesSent.WithLabelValues(dir.String()).Inc()
}

func (m *metrics) Dropped(dir relay.Direction, reason relay.DropReason) {
	m.dropped.WithLabelValues(dir.String(), string(reason)).Inc()
}

func (m *metrics) SendFailed(dir relay.Direction) {
	m.sendFailures.WithLabelValues(dir.String()).Inc()
}

func (m *metrics) ReceiveFailed(dir relay.Direction) {
	m.receiveErrors.WithLabelValues(dir.String()).Inc()
}
