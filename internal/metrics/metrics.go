// Package metrics exposes the optional Prometheus counters and gauges the
// transport and controller update. Grounded on vango's
// prometheus/client_golang direct dependency. Metrics are only wired to a
// live registry when the caller opts in via Register; otherwise the
// collectors exist but are simply never scraped, so there is no cost to
// not caring about them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups every metric this module emits.
type Collectors struct {
	ConnectTotal     *prometheus.CounterVec
	ReconnectTotal   *prometheus.CounterVec
	PendingRequests  prometheus.Gauge
	ReconnectAttempt prometheus.Gauge
	DecodeErrors     prometheus.Counter
}

// New builds a fresh, unregistered set of collectors.
func New() *Collectors {
	return &Collectors{
		ConnectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blynk_transport_connect_total",
			Help: "TLS connect attempts, labeled by outcome.",
		}, []string{"outcome"}),
		ReconnectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blynk_transport_reconnect_total",
			Help: "Reconnect attempts, labeled by outcome.",
		}, []string{"outcome"}),
		PendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blynk_pending_requests",
			Help: "Current correlator occupancy.",
		}),
		ReconnectAttempt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blynk_reconnect_attempt",
			Help: "Current reconnect attempt counter within an outage; 0 when connected.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blynk_decode_errors_total",
			Help: "Frames dropped by the decoder (oversized length or unknown opcode).",
		}),
	}
}

// IncConnect is a nil-safe increment of ConnectTotal.
func (c *Collectors) IncConnect(outcome string) {
	if c == nil {
		return
	}
	c.ConnectTotal.WithLabelValues(outcome).Inc()
}

// IncReconnect is a nil-safe increment of ReconnectTotal.
func (c *Collectors) IncReconnect(outcome string) {
	if c == nil {
		return
	}
	c.ReconnectTotal.WithLabelValues(outcome).Inc()
}

// SetPending is a nil-safe set of PendingRequests.
func (c *Collectors) SetPending(n int) {
	if c == nil {
		return
	}
	c.PendingRequests.Set(float64(n))
}

// SetReconnectAttempt is a nil-safe set of ReconnectAttempt.
func (c *Collectors) SetReconnectAttempt(n int) {
	if c == nil {
		return
	}
	c.ReconnectAttempt.Set(float64(n))
}

// IncDecodeErrors is a nil-safe increment of DecodeErrors.
func (c *Collectors) IncDecodeErrors() {
	if c == nil {
		return
	}
	c.DecodeErrors.Inc()
}

// Register adds every collector to reg. Safe to call with a nil
// Collectors (no-op) so callers that didn't opt in to metrics don't need
// to guard every call site.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	if c == nil || reg == nil {
		return nil
	}
	for _, collector := range []prometheus.Collector{
		c.ConnectTotal, c.ReconnectTotal, c.PendingRequests, c.ReconnectAttempt, c.DecodeErrors,
	} {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}
