package commands

import "orderhub/internal/core/domain/model/order"

// TransitionObserver receives lifecycle signals of the transition use case,
// typically for metrics.
type TransitionObserver interface {
	TransitionApplied(from, to order.Status)
	TransitionRejected(kind order.TransitionErrorKind)
	DispatchFailed()
}

type nopObserver struct{}

func (nopObserver) TransitionApplied(order.Status, order.Status)  {}
func (nopObserver) TransitionRejected(order.TransitionErrorKind) {}
func (nopObserver) DispatchFailed()                              {}
