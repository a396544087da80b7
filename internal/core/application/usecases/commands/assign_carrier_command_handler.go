package commands

import (
	"context"
	"time"

	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/order"
)

type AssignCarrierCommandHandler struct {
	uowFactory OrderUoWFactory
	now        func() time.Time
}

func NewAssignCarrierCommandHandler(uowFactory OrderUoWFactory) AssignCarrierCommandHandler {
	return AssignCarrierCommandHandler{uowFactory: uowFactory, now: time.Now}
}

func (h AssignCarrierCommandHandler) Handle(ctx context.Context, cmd AssignCarrierCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	at := h.now().UTC()
	return mutateOrder(ctx, h.uowFactory, cmd.OrderID(), cmd.Actor(), audit.ActionCarrierAssigned, at,
		func(o *order.Order) error {
			return o.AssignCarrier(cmd.Carrier(), at)
		})
}
