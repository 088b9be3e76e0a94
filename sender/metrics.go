package sender

import "github.com/prometheus/client_golang/prometheus"

type senderMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.SummaryVec
}

func registerMetrics(reg *prometheus.Registry) *senderMetrics {
	m := &senderMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "push",
			Subsystem: "sender",
			Name:      "requests_total",
			Help:      "total count of provider requests",
		}, []string{"op", "result"}),
		duration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: "push",
			Subsystem: "sender",
			Name:      "duration_seconds",
			Help:      "provider request duration",
			Objectives: map[float64]float64{
				0.5:  0.5,
				0.85: 0.01,
				0.95: 0.0005,
				0.99: 0.0001,
			},
		}, []string{"op"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}
