package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const namespace = "travelai"

// Metrics holds the service counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	chatRequests   *prometheus.CounterVec
	botUpdates     *prometheus.CounterVec
	webhookUpdates *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat relay requests by outcome.",
		}, []string{"status"}),
		botUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_updates_total",
			Help:      "Telegram updates dispatched by kind.",
		}, []string{"kind"}),
		webhookUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_updates_total",
			Help:      "Webhook deliveries by intake result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.chatRequests, m.botUpdates, m.webhookUpdates)

	return m
}

func (m *Metrics) ChatRequest(status string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(status).Inc()
}

func (m *Metrics) BotUpdate(kind string) {
	if m == nil {
		return
	}
	m.botUpdates.WithLabelValues(kind).Inc()
}

func (m *Metrics) WebhookUpdate(result string) {
	if m == nil {
		return
	}
	m.webhookUpdates.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func Module() fx.Option {
	return fx.Module(
		"metrics",
		fx.Provide(
			New,
		),
	)
}
