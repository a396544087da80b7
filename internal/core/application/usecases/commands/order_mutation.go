package commands

import (
	"context"
	"time"

	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
)

// mutateOrder loads an order with a row lock, applies fn, persists it and
// appends an audit entry with full before/after snapshots, all in one
// transaction. Status is never changed here.
func mutateOrder(
	ctx context.Context,
	uowFactory OrderUoWFactory,
	orderID kernel.UUID,
	actor kernel.Actor,
	action audit.Action,
	at time.Time,
	fn func(o *order.Order) error,
) (*order.Order, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	current, err := orderRepo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}

	before := current.Snapshot()
	if err = fn(current); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, current); err != nil {
		return nil, err
	}

	persisted, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	entry, err := audit.NewEntry(actor, action, audit.EntityOrder, orderID.String(), before, persisted.Snapshot(), at)
	if err != nil {
		return nil, err
	}
	if err = uow.AuditLogRepository().Append(ctx, entry); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return persisted, nil
}
