package commands

import (
	"context"
	"time"

	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/shipping"
)

// RegisterShippingLabelCommandHandler stores a label for an existing order and
// audits it against the label entity.
type RegisterShippingLabelCommandHandler struct {
	uowFactory OrderUoWFactory
	now        func() time.Time
}

func NewRegisterShippingLabelCommandHandler(uowFactory OrderUoWFactory) RegisterShippingLabelCommandHandler {
	return RegisterShippingLabelCommandHandler{uowFactory: uowFactory, now: time.Now}
}

func (h RegisterShippingLabelCommandHandler) Handle(
	ctx context.Context,
	cmd RegisterShippingLabelCommand,
) (*shipping.Label, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	at := h.now().UTC()
	label, err := shipping.NewLabel(cmd.LabelID(), cmd.OrderID(), cmd.Carrier(), cmd.TrackingNumber(), at)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if _, err = uow.OrderRepository().Get(ctx, cmd.OrderID()); err != nil {
		return nil, err
	}

	if err = uow.ShippingLabelRepository().Add(ctx, label); err != nil {
		return nil, err
	}

	entry, err := audit.NewEntry(cmd.Actor(), audit.ActionLabelRegistered, audit.EntityShippingLabel,
		label.ID().String(), nil, label.Snapshot(), at)
	if err != nil {
		return nil, err
	}
	if err = uow.AuditLogRepository().Append(ctx, entry); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return label, nil
}
