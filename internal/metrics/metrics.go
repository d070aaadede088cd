// Package metrics exposes prometheus collectors for box lifecycle events.
//
// A nil *Metrics is valid and records nothing, so callers that do not care
// about metrics can pass nil around freely.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cipherbox"

// How a session came into the cache.
const (
	EstablishedInitiator = "initiator"
	EstablishedResponder = "responder"
	EstablishedLoaded    = "loaded"
)

// Metrics holds the collectors.
type Metrics struct {
	SessionsCached      prometheus.Gauge
	SessionsEstablished *prometheus.CounterVec
	SessionsDeleted     prometheus.Counter
	PreKeysGenerated    prometheus.Counter
	EngineErrors        *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		SessionsCached: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_cached",
			Help:      "Number of sessions currently held in box caches.",
		}),
		SessionsEstablished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_established_total",
			Help:      "Sessions added to a box cache, by how they were obtained.",
		}, []string{"how"}),
		SessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_deleted_total",
			Help:      "Sessions permanently deleted.",
		}),
		PreKeysGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prekeys_generated_total",
			Help:      "Prekeys generated, including the last resort prekey.",
		}),
		EngineErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_errors_total",
			Help:      "Failures reported by the cipher engine, by operation.",
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{
		m.SessionsCached, m.SessionsEstablished, m.SessionsDeleted, m.PreKeysGenerated, m.EngineErrors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SessionCached counts a session added to a box cache and how it was obtained.
func (m *Metrics) SessionCached(how string) {
	if m == nil {
		return
	}
	m.SessionsCached.Inc()
	m.SessionsEstablished.WithLabelValues(how).Inc()
}

// SessionsEvicted records n sessions leaving a box cache.
func (m *Metrics) SessionsEvicted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.SessionsCached.Sub(float64(n))
}

// SessionDeleted counts a permanently deleted session.
func (m *Metrics) SessionDeleted() {
	if m == nil {
		return
	}
	m.SessionsDeleted.Inc()
}

// PreKeys counts n generated prekeys.
func (m *Metrics) PreKeys(n int) {
	if m == nil || n == 0 {
		return
	}
	m.PreKeysGenerated.Add(float64(n))
}

// EngineError counts a failed engine call for op.
func (m *Metrics) EngineError(op string) {
	if m == nil {
		return
	}
	m.EngineErrors.WithLabelValues(op).Inc()
}
