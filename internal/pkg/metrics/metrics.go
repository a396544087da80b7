// Package metrics exposes the service's Prometheus counters. A Recorder is
// bound to one registry so tests can use a private one.
package metrics

import (
	"net/http"

	"orderhub/internal/core/domain/model/order"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderhub"

// Recorder counts authentication outcomes and order transitions.
type Recorder struct {
	authFailures        *prometheus.CounterVec
	authSuccess         prometheus.Counter
	transitions         *prometheus.CounterVec
	transitionRejection *prometheus.CounterVec
	dispatchFailures    prometheus.Counter
}

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Rejected API requests by failure reason.",
		}, []string{"reason"}),
		authSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_success_total",
			Help:      "Authenticated API requests.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Committed order status transitions.",
		}, []string{"from", "to"}),
		transitionRejection: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transition_rejections_total",
			Help:      "Rejected order status transitions by kind.",
		}, []string{"kind"}),
		dispatchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_dispatch_failures_total",
			Help:      "Transition side-effect tasks that could not be scheduled after commit.",
		}),
	}

	reg.MustRegister(r.authFailures, r.authSuccess, r.transitions, r.transitionRejection, r.dispatchFailures)
	return r
}

func (r *Recorder) AuthFailed(reason string) {
	r.authFailures.WithLabelValues(reason).Inc()
}

func (r *Recorder) AuthSucceeded() {
	r.authSuccess.Inc()
}

func (r *Recorder) TransitionApplied(from, to order.Status) {
	r.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (r *Recorder) TransitionRejected(kind order.TransitionErrorKind) {
	r.transitionRejection.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) DispatchFailed() {
	r.dispatchFailures.Inc()
}

// Handler serves the metrics gathered by g in the text exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
