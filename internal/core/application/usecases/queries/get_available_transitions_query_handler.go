package queries

import (
	"context"
	"errors"

	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/core/domain/services"
	"orderhub/internal/core/ports"
)

// GetAvailableTransitionsQueryHandler evaluates the transition table and the
// guards against the stored order without opening a transaction. Guards
// receive no metadata, so the delivery confirmation check passes.
type GetAvailableTransitionsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetAvailableTransitionsQueryHandler(uowFactory ports.UnitOfWorkFactory) GetAvailableTransitionsQueryHandler {
	return GetAvailableTransitionsQueryHandler{uowFactory: uowFactory}
}

func (h GetAvailableTransitionsQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableTransitionsQuery,
) (GetAvailableTransitionsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetAvailableTransitionsQueryResponse{}, err
	}

	uow := h.uowFactory.Create()

	current, err := uow.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return GetAvailableTransitionsQueryResponse{}, err
	}

	guards := services.NewTransitionGuards(uow.ShippingLabelRepository())

	targets := current.Status().AllowedTargets()
	resp := GetAvailableTransitionsQueryResponse{
		OrderID:       current.ID(),
		CurrentStatus: current.Status(),
		Transitions:   make([]AvailableTransition, 0, len(targets)),
	}

	for _, target := range targets {
		available := AvailableTransition{Target: target, CanTransition: true}

		if checkErr := guards.Check(ctx, current, target, nil); checkErr != nil {
			var transitionErr *order.TransitionError
			if !errors.As(checkErr, &transitionErr) {
				return GetAvailableTransitionsQueryResponse{}, checkErr
			}
			available.CanTransition = false
			available.Reason = transitionErr.Message
		}

		resp.Transitions = append(resp.Transitions, available)
	}

	return resp, nil
}
