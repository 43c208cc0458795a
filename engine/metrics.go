package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus instruments.
type Metrics struct {
	poolsCreated   prometheus.Counter
	swapsExecuted  prometheus.Counter
	ticksCrossed   prometheus.Counter
	swapSteps      prometheus.Histogram
	swapDuration   *prometheus.HistogramVec
	positionsOpen  prometheus.Gauge
}

// NewMetrics builds and registers the engine metrics on a registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		poolsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "amm",
			Subsystem: "engine",
			Name:      "pools_created_total",
			Help:      "Number of pools created.",
		}),
		swapsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "amm",
			Subsystem: "engine",
			Name:      "swaps_executed_total",
			Help:      "Number of committed swaps, all hops counted individually.",
		}),
		ticksCrossed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "amm",
			Subsystem: "engine",
			Name:      "ticks_crossed_total",
			Help:      "Initialized ticks crossed by committed swaps.",
		}),
		swapSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "amm",
			Subsystem: "engine",
			Name:      "swap_steps",
			Help:      "Swap loop iterations per committed swap.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		swapDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "amm",
			Subsystem: "engine",
			Name:      "swap_duration_seconds",
			Help:      "Wall time of swap execution.",
		}, []string{"mode"}),
		positionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "amm",
			Subsystem: "engine",
			Name:      "positions_open",
			Help:      "Positions currently tracked.",
		}),
	}
	reg.MustRegister(m.poolsCreated, m.swapsExecuted, m.ticksCrossed, m.swapSteps, m.swapDuration, m.positionsOpen)
	return m
}
