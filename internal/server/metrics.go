package server

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Metrics holds the Prometheus collectors for one server instance. Each
// instance has its own registry so tests can build as many as they like.
type Metrics struct {
	registry    *prometheus.Registry
	connections prometheus.Gauge
	users       prometheus.Gauge
	events      *prometheus.CounterVec
	messages    prometheus.Counter
	rateLimited prometheus.Counter
	dropped     prometheus.Counter
}

// NewMetrics creates and registers the server collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomchat",
			Name:      "connections",
			Help:      "Open WebSocket connections.",
		}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomchat",
			Name:      "registered_users",
			Help:      "Connections with a registered username.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "events_total",
			Help:      "Inbound client events by name and result.",
		}, []string{"event", "result"}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "messages_total",
			Help:      "Chat messages accepted and broadcast.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "rate_limited_total",
			Help:      "Chat messages rejected by the per-user rate limit.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "dropped_frames_total",
			Help:      "Inbound frames discarded by flood protection or decoding errors.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.connections,
		m.users,
		m.events,
		m.messages,
		m.rateLimited,
		m.dropped,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// eventLabel bounds the event label to the known inbound names.
func eventLabel(event string) string {
	switch event {
	case eventRegister, eventCreateRoom, eventJoinRoom, eventSendMessage, eventTyping:
		return event
	default:
		return "unknown"
	}
}

func (m *Metrics) observeEvent(event string, out chat.Outcome) {
	event = eventLabel(event)
	result := "ok"
	var chatErr *chat.Error
	if errors.As(out.Err, &chatErr) {
		result = string(chatErr.Code)
	}
	m.events.WithLabelValues(event, result).Inc()

	switch {
	case errors.Is(out.Err, chat.ErrRateLimited):
		m.rateLimited.Inc()
	case event == eventSendMessage && out.Err == nil:
		m.messages.Inc()
	}
}

func (m *Metrics) setPopulation(connections, users int) {
	m.connections.Set(float64(connections))
	m.users.Set(float64(users))
}
