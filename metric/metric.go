package metric

import (
	"net/http"

	"github.com/anyproto/any-sync/app"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const CName = "push.metric"

func New() Metric {
	return new(metric)
}

// Metric owns the prometheus registry shared by all components.
type Metric interface {
	Registry() *prometheus.Registry
	Handler() http.Handler
	app.Component
}

type metric struct {
	registry *prometheus.Registry
}

func (m *metric) Init(a *app.App) (err error) {
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return nil
}

func (m *metric) Name() (name string) {
	return CName
}

func (m *metric) Registry() *prometheus.Registry {
	return m.registry
}

func (m *metric) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
