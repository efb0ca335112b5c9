package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DropClosed    = "closed"
	DropOverflow  = "overflow"
	DropMalformed = "malformed"
	DropEncode    = "encode"
)

// Metrics groups the collectors of one server process. A nil *Metrics records nothing,
// so components can run without a registry in tests.
type Metrics struct {
	Worlds           prometheus.Gauge
	Players          prometheus.Gauge
	MessagesReceived *prometheus.CounterVec
	MessagesDropped  *prometheus.CounterVec
	DispatchLatency  prometheus.Histogram
}

// New - creates the collectors and registers them on registerer.
func New(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		Worlds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_worlds",
			Help:      "Number of worlds held by the lobby",
		}),
		Players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_players",
			Help:      "Number of open player connections",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Decoded inbound messages by tag",
		}, []string{"tag"}),
		MessagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Inbound or outbound messages dropped by reason",
		}, []string{"reason"}),
		DispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_latency_seconds",
			Help:      "Time spent running one message through a world's systems",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}

	registerer.MustRegister(
		m.Worlds,
		m.Players,
		m.MessagesReceived,
		m.MessagesDropped,
		m.DispatchLatency,
	)

	return m
}

func (m *Metrics) SetWorlds(count int) {
	if m == nil {
		return
	}
	m.Worlds.Set(float64(count))
}

func (m *Metrics) PlayerConnected() {
	if m == nil {
		return
	}
	m.Players.Inc()
}

func (m *Metrics) PlayerDisconnected() {
	if m == nil {
		return
	}
	m.Players.Dec()
}

func (m *Metrics) MessageReceived(tag string) {
	if m == nil {
		return
	}
	m.MessagesReceived.WithLabelValues(tag).Inc()
}

func (m *Metrics) MessageDropped(reason string) {
	if m == nil {
		return
	}
	m.MessagesDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveDispatch(duration time.Duration) {
	if m == nil {
		return
	}
	m.DispatchLatency.Observe(duration.Seconds())
}
