// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics collects and exposes Prometheus metrics for the API server
and the generation worker.

Families:

  - briefly_http_*: request counts and latency per route pattern.
  - briefly_entitlement_decisions_total: gating outcomes for summary reads.
  - briefly_webhook_events_total: payment relay deliveries by type and outcome.
  - briefly_generation_*: generation request outcomes and processing latency.
  - briefly_best_effort_failures_total: degraded steps reported as warnings.

A nil [*Collector] is valid and records nothing, which keeps unit tests free
of registry plumbing.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric family registered by the process.
type Collector struct {
	httpRequests         *prometheus.CounterVec
	httpLatency          *prometheus.HistogramVec
	entitlementDecisions *prometheus.CounterVec
	webhookEvents        *prometheus.CounterVec
	generationOutcomes   *prometheus.CounterVec
	generationLatency    prometheus.Histogram
	bestEffortFailures   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "briefly_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "briefly_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		entitlementDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "briefly_entitlement_decisions_total",
			Help: "Summary access decisions by outcome.",
		}, []string{"decision"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "briefly_webhook_events_total",
			Help: "Payment webhook deliveries by event type and outcome.",
		}, []string{"type", "outcome"}),
		generationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "briefly_generation_requests_total",
			Help: "Generation requests reaching a terminal status.",
		}, []string{"status"}),
		generationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "briefly_generation_duration_seconds",
			Help:    "Time from claim to terminal status for generation requests.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		bestEffortFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "briefly_best_effort_failures_total",
			Help: "Tolerated failures of optional steps, by step.",
		}, []string{"step"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.entitlementDecisions,
		c.webhookEvents,
		c.generationOutcomes,
		c.generationLatency,
		c.bestEffortFailures,
	)

	return c
}

// ObserveRequest records a finished HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordEntitlement records one entitlement decision.
func (c *Collector) RecordEntitlement(decision string) {
	if c == nil {
		return
	}
	c.entitlementDecisions.WithLabelValues(decision).Inc()
}

// RecordWebhook records a webhook delivery. Outcome is "applied", "duplicate",
// "ignored" or "failed".
func (c *Collector) RecordWebhook(eventType, outcome string) {
	if c == nil {
		return
	}
	c.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// RecordGeneration records a generation request reaching status after duration.
func (c *Collector) RecordGeneration(status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.generationOutcomes.WithLabelValues(status).Inc()
	c.generationLatency.Observe(duration.Seconds())
}

// RecordBestEffortFailure counts a degraded optional step.
func (c *Collector) RecordBestEffortFailure(step string) {
	if c == nil {
		return
	}
	c.bestEffortFailures.WithLabelValues(step).Inc()
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute returns a mux serving /metrics, used by the worker's
// standalone metrics listener.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
