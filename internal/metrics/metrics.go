package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingress_requests_total",
		Help: "Total inbound webhook requests, labelled by provider and route kind.",
	}, []string{"provider", "route"})

	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingress_auth_failures_total",
		Help: "Total signature verification failures on the public endpoint.",
	}, []string{"provider"})

	UnsignFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingress_unsign_failures_total",
		Help: "Total bad signed tokens on control routes.",
	}, []string{"provider"})

	Pongs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingress_pongs_total",
		Help: "Total liveness probes acknowledged without forwarding.",
	}, []string{"provider"})

	Dispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingress_dispatches_total",
		Help: "Total terminal dispatch decisions, labelled by provider and outcome.",
	}, []string{"provider", "outcome"})

	ResolutionMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingress_resolution_misses_total",
		Help: "Requests that fell back to the control silo because no integration or regions resolved.",
	}, []string{"provider"})

	RegionDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingress_region_dispatches_total",
		Help: "Total outbound region calls, labelled by region and status.",
	}, []string{"region", "status"})

	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingress_request_duration_ms",
		Help:    "End-to-end inbound request latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ingress_fanout_queue_utilization_ratio",
		Help: "Current fan-out queue utilization (0–1).",
	})
)
