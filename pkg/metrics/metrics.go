// Package metrics provides Prometheus observability for the session
// bootstrap: which surfaces get resolved, how callbacks dispose, and how
// often sessions are forcibly cleared.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SurfacesResolved  *prometheus.CounterVec
	CallbacksResolved *prometheus.CounterVec
	SessionsCleared   prometheus.Counter
}

// New registers the portal metrics with the given registerer. Pass a
// fresh registry per process; registering the same names twice panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SurfacesResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_surfaces_resolved_total",
			Help: "Bootstrap decisions by resolved surface",
		}, []string{"surface"}),
		CallbacksResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_callbacks_resolved_total",
			Help: "Authentication callbacks by disposition",
		}, []string{"disposition"}),
		SessionsCleared: factory.NewCounter(prometheus.CounterOpts{
			Name: "portal_sessions_cleared_total",
			Help: "Sessions cleared after the backend rejected the token",
		}),
	}
}

// SurfaceResolved records one bootstrap decision.
func (m *Metrics) SurfaceResolved(surface string) {
	m.SurfacesResolved.WithLabelValues(surface).Inc()
}

// CallbackResolved records one callback resolution.
func (m *Metrics) CallbackResolved(disposition string) {
	m.CallbacksResolved.WithLabelValues(disposition).Inc()
}

// SessionCleared records one forced session clear.
func (m *Metrics) SessionCleared() {
	m.SessionsCleared.Inc()
}
