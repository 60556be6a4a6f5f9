package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	eventsReceived   *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	reconnects       *prometheus.CounterVec
	transportSwitch  *prometheus.CounterVec
	feedDepth        prometheus.Gauge
	relayClients     prometheus.Gauge
	latency          *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		eventsReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkflow_events_received_total",
				Help: "Total number of flow events received from upstream",
			},
			[]string{"transport", "type"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkflow_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"kind"},
		),
		reconnects: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkflow_reconnects_total",
				Help: "Reconnect attempts per transport",
			},
			[]string{"transport"},
		),
		transportSwitch: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkflow_transport_switches_total",
				Help: "Transport fallback switches",
			},
			[]string{"from", "to"},
		),
		feedDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "darkflow_feed_depth",
				Help: "Current number of events held in the live feed",
			},
		),
		relayClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "darkflow_relay_clients",
				Help: "Connected dashboard relay clients",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "darkflow_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkflow_upstream_requests_total",
				Help: "Upstream REST requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
	}
}

// RecordEvent records a flow event received over the given transport.
func (r *Recorder) RecordEvent(transport, eventType string) {
	r.eventsReceived.WithLabelValues(transport, eventType).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordReconnect records a reconnect attempt.
func (r *Recorder) RecordReconnect(transport string) {
	r.reconnects.WithLabelValues(transport).Inc()
}

// RecordTransportSwitch records a fallback switch.
func (r *Recorder) RecordTransportSwitch(from, to string) {
	r.transportSwitch.WithLabelValues(from, to).Inc()
}

// RecordFeedDepth records the current feed length.
func (r *Recorder) RecordFeedDepth(n int) {
	r.feedDepth.Set(float64(n))
}

// RecordRelayClients records connected relay client count.
func (r *Recorder) RecordRelayClients(n int) {
	r.relayClients.Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordUpstreamRequest records an upstream REST call outcome.
func (r *Recorder) RecordUpstreamRequest(endpoint, outcome string) {
	r.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}
