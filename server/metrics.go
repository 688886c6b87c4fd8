package server

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	reloads  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oaisim",
			Name:      "requests_total",
			Help:      "OAI-PMH requests by verb and outcome (ok or error code).",
		}, []string{"verb", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "oaisim",
			Name:      "request_duration_seconds",
			Help:      "Time spent answering OAI-PMH requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"verb"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oaisim",
			Name:      "repository_reloads_total",
			Help:      "Number of times the repository was replaced.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.reloads)
	return m
}
