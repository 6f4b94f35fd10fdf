// Package metrics bundles the prometheus collectors the forecast service
// updates on every run.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set holds the service's collectors on a private registry.
type Set struct {
	registry *prometheus.Registry

	RunsTotal      *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	ForecastPoints prometheus.Gauge
	RollupValue    *prometheus.GaugeVec
}

// NewSet constructs and registers the collectors.
func NewSet() *Set {
	registry := prometheus.NewRegistry()

	set := &Set{
		registry: registry,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nrgforecast",
			Name:      "runs_total",
			Help:      "Forecast runs by outcome status.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nrgforecast",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one forecast computation.",
			Buckets:   prometheus.DefBuckets,
		}),
		ForecastPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nrgforecast",
			Name:      "forecast_points",
			Help:      "Entries in the latest forecast map.",
		}),
		RollupValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nrgforecast",
			Name:      "rollup_kwh",
			Help:      "Latest rollup values by kind.",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		set.RunsTotal,
		set.RunDuration,
		set.ForecastPoints,
		set.RollupValue,
	)

	return set
}

// Handler serves the registry in the prometheus exposition format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
