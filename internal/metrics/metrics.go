// Package metrics exports terrain activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Faultbox/heightray/pkg/terrain"
)

const namespace = "heightray"

// Ray results.
const (
	ResultHit        = "hit"
	ResultMiss       = "miss"
	ResultDegenerate = "degenerate"
)

// Collector implements terrain.Observer on top of Prometheus metrics.
// It is safe for concurrent use.
type Collector struct {
	rays         *prometheus.CounterVec
	marchSteps   prometheus.Histogram
	mapLoads     *prometheus.CounterVec
	pointUpdates prometheus.Counter
}

var _ terrain.Observer = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		rays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rays_total",
			Help:      "Ray marches by result.",
		}, []string{"result"}),
		marchSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "march_steps",
			Help:      "Loop iterations per ray march.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		mapLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_loads_total",
			Help:      "Whole-map loads by result.",
		}, []string{"result"}),
		pointUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "point_updates_total",
			Help:      "Single-sample height writes.",
		}),
	}

	reg.MustRegister(c.rays, c.marchSteps, c.mapLoads, c.pointUpdates)
	return c
}

// ObserveMarch records one ray march.
func (c *Collector) ObserveMarch(res terrain.MarchResult) {
	switch {
	case res.Degenerate:
		c.rays.WithLabelValues(ResultDegenerate).Inc()
		return
	case res.Hit:
		c.rays.WithLabelValues(ResultHit).Inc()
	default:
		c.rays.WithLabelValues(ResultMiss).Inc()
	}
	c.marchSteps.Observe(float64(res.Steps))
}

// ObserveMapLoad records a whole-map load attempt.
func (c *Collector) ObserveMapLoad(ok bool) {
	result := "ok"
	if !ok {
		result = "rejected"
	}
	c.mapLoads.WithLabelValues(result).Inc()
}

// ObservePointUpdate records an in-range height write.
func (c *Collector) ObservePointUpdate() {
	c.pointUpdates.Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
