package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/core/domain/services"
	"orderhub/internal/core/ports"
	"orderhub/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultTransitionMaxAttempts bounds the optimistic retries of one transition.
const DefaultTransitionMaxAttempts = 3

// ErrTransitionConflict is returned when every attempt lost a race against a
// concurrent writer of the same order.
var ErrTransitionConflict = errors.New("order transition conflicted with a concurrent update")

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// TransitionOrderCommandHandler is the order state machine. It is the only
// code path that changes an order's status.
//
// One attempt runs in a single transaction:
//  1. load the order with a row lock
//  2. reject targets outside the transition table
//  3. run the (source, target) guard
//  4. apply, persist with a version check, reload and confirm
//  5. append the status_change audit entry and enqueue the task in the outbox
//  6. register the side-effect dispatch as an after-commit hook
//
// A lost race re-reads the order and re-evaluates legality, up to maxAttempts.
// A task whose dispatch fails stays undelivered in the outbox until
// RedeliverTransitionTasksCommandHandler picks it up.
type TransitionOrderCommandHandler struct {
	uowFactory  OrderUoWFactory
	dispatcher  ports.TransitionDispatcher
	observer    TransitionObserver
	logger      *slog.Logger
	maxAttempts int
	now         func() time.Time
}

type TransitionOrderOption func(*TransitionOrderCommandHandler)

func WithTransitionObserver(o TransitionObserver) TransitionOrderOption {
	return func(h *TransitionOrderCommandHandler) {
		if o != nil {
			h.observer = o
		}
	}
}

func WithTransitionMaxAttempts(n int) TransitionOrderOption {
	return func(h *TransitionOrderCommandHandler) {
		if n > 0 {
			h.maxAttempts = n
		}
	}
}

func WithTransitionClock(now func() time.Time) TransitionOrderOption {
	return func(h *TransitionOrderCommandHandler) {
		if now != nil {
			h.now = now
		}
	}
}

func NewTransitionOrderCommandHandler(
	uowFactory OrderUoWFactory,
	dispatcher ports.TransitionDispatcher,
	logger *slog.Logger,
	opts ...TransitionOrderOption,
) TransitionOrderCommandHandler {
	h := TransitionOrderCommandHandler{
		uowFactory:  uowFactory,
		dispatcher:  dispatcher,
		observer:    nopObserver{},
		logger:      logger.With("component", "transition-order"),
		maxAttempts: DefaultTransitionMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Handle applies cmd and returns the order as persisted. Rejections are
// *order.TransitionError; a lost race after all attempts wraps
// ErrTransitionConflict.
func (h TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		updated, err := h.attempt(ctx, cmd)
		if err == nil {
			return updated, nil
		}

		var transitionErr *order.TransitionError
		if errors.As(err, &transitionErr) {
			h.observer.TransitionRejected(transitionErr.Kind)
			return nil, err
		}
		if !isRetryable(err) {
			return nil, err
		}
		if attempt >= h.maxAttempts {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrTransitionConflict, attempt, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		h.logger.Warn("retrying order transition",
			"order_id", cmd.OrderID().String(),
			"target", cmd.Target().String(),
			"attempt", attempt,
			"error", err,
		)
	}
}

func (h TransitionOrderCommandHandler) attempt(ctx context.Context, cmd TransitionOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	current, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	from, target := current.Status(), cmd.Target()
	if !from.CanTransitionTo(target) {
		return nil, order.NewIllegalTransitionError(from, target)
	}

	guards := services.NewTransitionGuards(uow.ShippingLabelRepository())
	if err = guards.Check(ctx, current, target, cmd.Metadata()); err != nil {
		return nil, err
	}

	at := h.now().UTC()
	before := transitionSnapshot(from, cmd, current.Snapshot())

	if err = current.TransitionTo(target, at); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, current); err != nil {
		return nil, err
	}

	persisted, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if persisted.Status() != target {
		return nil, errs.NewInfrastructureError("confirm order status",
			fmt.Errorf("persisted status is %s, expected %s", persisted.Status(), target))
	}

	entry, err := audit.NewEntry(
		cmd.Actor(),
		audit.ActionStatusChange,
		audit.EntityOrder,
		cmd.OrderID().String(),
		before,
		transitionSnapshot(target, cmd, persisted.Snapshot()),
		at,
	)
	if err != nil {
		return nil, err
	}
	if err = uow.AuditLogRepository().Append(ctx, entry); err != nil {
		return nil, err
	}

	task := ports.TransitionTask{
		TaskID:     entry.ID(),
		OrderID:    cmd.OrderID().String(),
		OldStatus:  from.String(),
		NewStatus:  target.String(),
		Reason:     cmd.Reason(),
		Metadata:   cmd.Metadata(),
		ActorType:  string(cmd.Actor().Type),
		ActorID:    cmd.Actor().ID,
		OccurredAt: at,
	}
	if err = uow.TransitionOutbox().Enqueue(ctx, task); err != nil {
		return nil, err
	}
	uow.AfterCommit(func(ctx context.Context) {
		h.observer.TransitionApplied(from, target)
		h.dispatch(ctx, uow.TransitionOutbox(), task)
	})

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return persisted, nil
}

// dispatch runs after commit, so outbox writes go through the pool. Failures
// are logged and counted; the outbox row stays undelivered for the relay.
func (h TransitionOrderCommandHandler) dispatch(ctx context.Context, outbox ports.TransitionOutbox, task ports.TransitionTask) {
	if h.dispatcher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := deliverTask(ctx, h.dispatcher, outbox, task, h.now()); err != nil {
		h.observer.DispatchFailed()
		h.logger.Error("failed to dispatch transition side effects",
			"task_id", task.TaskID,
			"order_id", task.OrderID,
			"old_status", task.OldStatus,
			"new_status", task.NewStatus,
			"error", err,
		)
	}
}

func transitionSnapshot(status order.Status, cmd TransitionOrderCommand, snapshot map[string]any) map[string]any {
	return map[string]any{
		"status":   status.String(),
		"reason":   cmd.Reason(),
		"metadata": cmd.Metadata(),
		"order":    snapshot,
	}
}

// isRetryable reports whether err means another transaction won the race.
func isRetryable(err error) bool {
	if errors.Is(err, ports.ErrConcurrentModification) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}
	return false
}
