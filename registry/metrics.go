package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

type metrics struct {
	refreshes *prometheus.CounterVec
	cached    prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gqlblock_schema_refresh_total",
				Help: "Total number of schema refreshes by result",
			},
			[]string{"result"},
		),
		cached: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gqlblock_cached_schemas",
				Help: "Number of endpoint schemas held in the cache",
			},
		),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.refreshes, m.cached} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}

	return nil
}
