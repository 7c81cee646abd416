package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphview_simulation_ticks_total",
		Help: "Simulation ticks run",
	})

	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphview_tick_duration_seconds",
		Help:    "Duration of one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphview_render_duration_seconds",
		Help:    "Duration of one frame render",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	graphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphview_nodes",
		Help: "Nodes in the current graph",
	})

	graphLinks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphview_links",
		Help: "Links in the current graph",
	})

	droppedLinksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphview_dropped_links_total",
		Help: "Links dropped because an endpoint was hidden or missing",
	})

	// Labels: click, drag_start, drag_move, drag_end, pan, zoom
	intentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphview_interaction_intents_total",
		Help: "Interaction intents by kind",
	}, []string{"kind"})
)
