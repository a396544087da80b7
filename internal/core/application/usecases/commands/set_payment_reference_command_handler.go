package commands

import (
	"context"
	"time"

	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/order"
)

type SetPaymentReferenceCommandHandler struct {
	uowFactory OrderUoWFactory
	now        func() time.Time
}

func NewSetPaymentReferenceCommandHandler(uowFactory OrderUoWFactory) SetPaymentReferenceCommandHandler {
	return SetPaymentReferenceCommandHandler{uowFactory: uowFactory, now: time.Now}
}

func (h SetPaymentReferenceCommandHandler) Handle(
	ctx context.Context,
	cmd SetPaymentReferenceCommand,
) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	at := h.now().UTC()
	return mutateOrder(ctx, h.uowFactory, cmd.OrderID(), cmd.Actor(), audit.ActionPaymentReferenceSet, at,
		func(o *order.Order) error {
			return o.SetPaymentReference(cmd.Reference(), at)
		})
}
