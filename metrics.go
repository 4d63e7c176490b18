package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dropsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_builder_drops_total",
		Help: "Drop resolutions by chart type and outcome",
	}, []string{"chart_type", "outcome"})
	rejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_builder_rejections_total",
		Help: "Rejected drops by reason",
	}, []string{"reason"})
	dragDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "panel_builder_drag_duration_seconds",
		Help:    "Time from drag start to resolution in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
	activeSessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "panel_builder_active_sessions",
		Help: "Live builder sessions",
	})
	wsClientsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "panel_builder_ws_clients",
		Help: "Connected WebSocket clients",
	})
	dragEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_builder_drag_events_total",
		Help: "Inbound drag events by type",
	}, []string{"type"})
	catalogRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_builder_catalog_refresh_total",
		Help: "Field catalog refresh attempts by result",
	}, []string{"result"})
	breakerOpenGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "panel_builder_catalog_breaker_open",
		Help: "1 when the catalog circuit breaker is open",
	})
)

func init() {
	prometheus.MustRegister(
		dropsTotal, rejectionsTotal, dragDuration, activeSessionsGauge,
		wsClientsGauge, dragEventsTotal, catalogRefreshTotal, breakerOpenGauge,
	)
}
