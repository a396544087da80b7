package commands_test

import (
	"errors"
	"testing"
	"time"

	"orderhub/internal/core/application/usecases/commands"
	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/core/ports"
	"orderhub/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type transitionFixture struct {
	orders     *MockOrderRepository
	audits     *MockAuditLogRepository
	labels     *MockShippingLabelRepository
	outbox     *fakeOutbox
	uow        *MockOrderUoW
	factory    *MockOrderUoWFactory
	dispatcher *MockTransitionDispatcher
	observer   *recordingObserver
	handler    commands.TransitionOrderCommandHandler
}

func newTransitionFixture(maxAttempts int) *transitionFixture {
	f := &transitionFixture{
		orders:     new(MockOrderRepository),
		audits:     new(MockAuditLogRepository),
		labels:     new(MockShippingLabelRepository),
		outbox:     &fakeOutbox{},
		uow:        new(MockOrderUoW),
		factory:    new(MockOrderUoWFactory),
		dispatcher: new(MockTransitionDispatcher),
		observer:   &recordingObserver{},
	}
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.uow.On("OrderRepository").Return(f.orders)
	f.uow.On("AuditLogRepository").Return(f.audits)
	f.uow.On("ShippingLabelRepository").Return(f.labels)
	f.uow.On("TransitionOutbox").Return(f.outbox)
	f.uow.On("AfterCommit", mock.Anything).Return()

	f.handler = commands.NewTransitionOrderCommandHandler(f.factory, f.dispatcher, discardLg,
		commands.WithTransitionObserver(f.observer),
		commands.WithTransitionMaxAttempts(maxAttempts),
		commands.WithTransitionClock(func() time.Time { return fixedNow }),
	)
	return f
}

func transitionCmd(t *testing.T, id kernel.UUID, target order.Status, metadata map[string]any) commands.TransitionOrderCommand {
	t.Helper()
	cmd, err := commands.NewTransitionOrderCommand(id, target, "customer request", metadata, apiActor)
	require.NoError(t, err)
	return cmd
}

func TestTransitionOrderCommandHandler_Confirm(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	current := orderFixture(t, id, order.New, "", 0)
	persisted := orderFixture(t, id, order.Confirmed, "", 1)

	f.orders.On("GetForUpdate", mock.Anything, id).Return(current, nil).Once()
	f.orders.On("Update", mock.Anything, current).Return(nil).Once()
	f.orders.On("Get", mock.Anything, id).Return(persisted, nil).Once()
	f.audits.On("Append", mock.Anything, mock.AnythingOfType("*audit.Entry")).Return(nil).Once()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()

	var dispatched ports.TransitionTask
	f.dispatcher.On("Dispatch", mock.Anything, mock.AnythingOfType("ports.TransitionTask")).
		Run(func(args mock.Arguments) { dispatched = args.Get(1).(ports.TransitionTask) }).
		Return(nil).Once()

	updated, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, map[string]any{"channel": "api"}))

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, updated.Status())
	assert.Equal(t, order.Confirmed, current.Status(), "the locked aggregate was transitioned before update")

	require.Len(t, f.audits.appended, 1)
	entry := f.audits.appended[0]
	assert.Equal(t, audit.ActionStatusChange, entry.Action())
	assert.Equal(t, audit.EntityOrder, entry.EntityType())
	assert.Equal(t, id.String(), entry.EntityID())
	assert.Equal(t, apiActor, entry.Actor())
	assert.Equal(t, "new", entry.Before()["status"])
	assert.Equal(t, "confirmed", entry.After()["status"])
	assert.Equal(t, "customer request", entry.After()["reason"])
	assert.Equal(t, map[string]any{"channel": "api"}, entry.After()["metadata"])
	assert.Equal(t, "new", entry.Before()["order"].(map[string]any)["status"])

	assert.Equal(t, entry.ID(), dispatched.TaskID)
	assert.Equal(t, id.String(), dispatched.OrderID)
	assert.Equal(t, "new", dispatched.OldStatus)
	assert.Equal(t, "confirmed", dispatched.NewStatus)
	assert.Equal(t, "customer request", dispatched.Reason)
	assert.Equal(t, "api", dispatched.ActorType)
	assert.Equal(t, fixedNow, dispatched.OccurredAt)

	require.Len(t, f.outbox.enqueued, 1)
	assert.Equal(t, dispatched, f.outbox.enqueued[0], "the dispatched task is the one enqueued with the transition")
	assert.Equal(t, []string{entry.ID()}, f.outbox.marked)

	assert.Equal(t, []order.Transition{{From: order.New, To: order.Confirmed}}, f.observer.applied)
	f.orders.AssertExpectations(t)
	f.audits.AssertExpectations(t)
	f.dispatcher.AssertExpectations(t)
	f.uow.AssertNumberOfCalls(t, "AfterCommit", 1)
}

func TestTransitionOrderCommandHandler_PayWithoutReference(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	current := orderFixture(t, id, order.Confirmed, "", 1)
	f.orders.On("GetForUpdate", mock.Anything, id).Return(current, nil).Once()

	updated, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Paid, nil))

	require.ErrorIs(t, err, order.ErrGuardFailed)
	assert.Nil(t, updated)
	assert.Contains(t, err.Error(), "payment reference identifier is missing")
	assert.Equal(t, order.Confirmed, current.Status())
	f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.audits.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	assert.Equal(t, []order.TransitionErrorKind{order.TransitionGuardFailed}, f.observer.rejected)
}

func TestTransitionOrderCommandHandler_IllegalFromTerminal(t *testing.T) {
	for _, target := range order.All() {
		f := newTransitionFixture(3)
		id := kernel.NewUUID()
		current := orderFixture(t, id, order.Completed, "pay_1", 4)
		f.orders.On("GetForUpdate", mock.Anything, id).Return(current, nil).Once()

		_, err := f.handler.Handle(t.Context(), transitionCmd(t, id, target, nil))

		require.ErrorIs(t, err, order.ErrIllegalTransition, "completed -> %s", target)
		assert.Equal(t, order.Completed, current.Status())
		f.uow.AssertNotCalled(t, "ShippingLabelRepository")
		f.audits.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	}
}

func TestTransitionOrderCommandHandler_NotFound(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(nil, errs.NewObjectNotFoundError("order", id)).Once()

	_, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	f.factory.AssertNumberOfCalls(t, "Create", 1)
}

func TestTransitionOrderCommandHandler_RetriesLostRace(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	stale := orderFixture(t, id, order.New, "", 0)
	fresh := orderFixture(t, id, order.New, "", 1)
	persisted := orderFixture(t, id, order.Confirmed, "", 2)

	f.orders.On("GetForUpdate", mock.Anything, id).Return(stale, nil).Once()
	f.orders.On("Update", mock.Anything, stale).Return(ports.ErrConcurrentModification).Once()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(fresh, nil).Once()
	f.orders.On("Update", mock.Anything, fresh).Return(nil).Once()
	f.orders.On("Get", mock.Anything, id).Return(persisted, nil).Once()
	f.audits.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	updated, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, updated.Status())
	f.factory.AssertNumberOfCalls(t, "Create", 2)
	f.uow.AssertNumberOfCalls(t, "AfterCommit", 1)
	f.dispatcher.AssertNumberOfCalls(t, "Dispatch", 1)
	assert.Len(t, f.audits.appended, 1)
}

func TestTransitionOrderCommandHandler_RetryReevaluatesLegality(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	stale := orderFixture(t, id, order.New, "", 0)
	winner := orderFixture(t, id, order.Cancelled, "", 1)

	f.orders.On("GetForUpdate", mock.Anything, id).Return(stale, nil).Once()
	f.orders.On("Update", mock.Anything, stale).Return(ports.ErrConcurrentModification).Once()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(winner, nil).Once()

	_, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.ErrorIs(t, err, order.ErrIllegalTransition)
	assert.Contains(t, err.Error(), "cannot transition order from cancelled to confirmed")
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestTransitionOrderCommandHandler_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newTransitionFixture(2)
	id := kernel.NewUUID()

	f.orders.On("GetForUpdate", mock.Anything, id).Return(orderFixture(t, id, order.New, "", 0), nil).Once()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(orderFixture(t, id, order.New, "", 0), nil).Once()
	f.orders.On("Update", mock.Anything, mock.Anything).
		Return(&pgconn.PgError{Code: "40001", Message: "could not serialize access"}).Twice()

	_, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.ErrorIs(t, err, commands.ErrTransitionConflict)
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Contains(t, err.Error(), "after 2 attempts")
	f.factory.AssertNumberOfCalls(t, "Create", 2)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestTransitionOrderCommandHandler_NonRetryablePgError(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(orderFixture(t, id, order.New, "", 0), nil).Once()
	f.orders.On("Update", mock.Anything, mock.Anything).
		Return(&pgconn.PgError{Code: "23505", Message: "duplicate key"}).Once()

	_, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.Error(t, err)
	assert.NotErrorIs(t, err, commands.ErrTransitionConflict)
	f.factory.AssertNumberOfCalls(t, "Create", 1)
}

func TestTransitionOrderCommandHandler_AuditFailureRollsBack(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(orderFixture(t, id, order.New, "", 0), nil).Once()
	f.orders.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, id).Return(orderFixture(t, id, order.Confirmed, "", 1), nil).Once()
	f.audits.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	_, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.Error(t, err)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.uow.AssertCalled(t, "Rollback", mock.Anything)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	assert.Empty(t, f.outbox.enqueued)
	assert.Empty(t, f.observer.applied)
}

func TestTransitionOrderCommandHandler_CommitFailureSkipsDispatch(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(orderFixture(t, id, order.New, "", 0), nil).Once()
	f.orders.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, id).Return(orderFixture(t, id, order.Confirmed, "", 1), nil).Once()
	f.audits.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	f.uow.On("Commit", mock.Anything).Return(errors.New("connection lost")).Once()

	_, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.Error(t, err)
	f.uow.AssertNumberOfCalls(t, "AfterCommit", 1)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	assert.Empty(t, f.outbox.marked)
}

func TestTransitionOrderCommandHandler_ReloadMismatch(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(orderFixture(t, id, order.New, "", 0), nil).Once()
	f.orders.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, id).Return(orderFixture(t, id, order.New, "", 0), nil).Once()

	_, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.Error(t, err)
	assert.True(t, errs.IsInfrastructure(err))
	f.audits.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestTransitionOrderCommandHandler_DispatchFailureKeepsTransition(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(orderFixture(t, id, order.New, "", 0), nil).Once()
	f.orders.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, id).Return(orderFixture(t, id, order.Confirmed, "", 1), nil).Once()
	f.audits.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	updated, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, updated.Status())
	assert.Equal(t, 1, f.observer.dispatchKO)
	assert.Len(t, f.outbox.enqueued, 1)
	assert.Empty(t, f.outbox.marked, "the task stays undelivered for the relay")
}

func TestTransitionOrderCommandHandler_OutboxFailureRollsBack(t *testing.T) {
	f := newTransitionFixture(3)
	f.outbox.enqueueErr = errors.New("disk full")

	id := kernel.NewUUID()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(orderFixture(t, id, order.New, "", 0), nil).Once()
	f.orders.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, id).Return(orderFixture(t, id, order.Confirmed, "", 1), nil).Once()
	f.audits.On("Append", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.Error(t, err)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.uow.AssertCalled(t, "Rollback", mock.Anything)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestTransitionOrderCommandHandler_MarkFailureKeepsTransition(t *testing.T) {
	f := newTransitionFixture(3)
	f.outbox.markErr = errors.New("connection lost")

	id := kernel.NewUUID()
	f.orders.On("GetForUpdate", mock.Anything, id).Return(orderFixture(t, id, order.New, "", 0), nil).Once()
	f.orders.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, id).Return(orderFixture(t, id, order.Confirmed, "", 1), nil).Once()
	f.audits.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	updated, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Confirmed, nil))

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, updated.Status())
	assert.Equal(t, 1, f.observer.dispatchKO)
	assert.Len(t, f.outbox.enqueued, 1)
	assert.Empty(t, f.outbox.marked)
}

func TestTransitionOrderCommandHandler_FulfilChecksLabelsInTransaction(t *testing.T) {
	f := newTransitionFixture(3)
	id := kernel.NewUUID()
	current := orderFixture(t, id, order.Paid, "pay_1", 2)
	f.orders.On("GetForUpdate", mock.Anything, id).Return(current, nil).Once()
	f.labels.On("HasGeneratedLabel", mock.Anything, id).Return(false, nil).Once()

	_, err := f.handler.Handle(t.Context(), transitionCmd(t, id, order.Fulfilled, nil))

	require.ErrorIs(t, err, order.ErrGuardFailed)
	assert.Contains(t, err.Error(), "no carrier assigned")
	assert.Contains(t, err.Error(), "no generated shipping label")
	f.labels.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_NotConstructed(t *testing.T) {
	f := newTransitionFixture(3)

	_, err := f.handler.Handle(t.Context(), commands.TransitionOrderCommand{})

	require.ErrorIs(t, err, commands.ErrTransitionOrderCommandIsNotConstructed)
	f.factory.AssertNotCalled(t, "Create")
}

// Every pair starts from an order that satisfies all guards, so each allowed
// transition must commit exactly once.
func TestTransitionOrderCommandHandler_EveryAllowedPairAuditsAndDispatchesOnce(t *testing.T) {
	for _, from := range order.All() {
		for _, to := range from.AllowedTargets() {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				f := newTransitionFixture(3)
				id := kernel.NewUUID()
				current := carrierOrderFixture(t, id, from, "pay_1", "DHL", 3)

				f.orders.On("GetForUpdate", mock.Anything, id).Return(current, nil).Once()
				f.orders.On("Update", mock.Anything, current).Return(nil).Once()
				f.orders.On("Get", mock.Anything, id).Return(carrierOrderFixture(t, id, to, "pay_1", "DHL", 4), nil).Once()
				f.labels.On("HasGeneratedLabel", mock.Anything, id).Return(true, nil).Maybe()
				f.audits.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
				f.uow.On("Commit", mock.Anything).Return(nil).Once()
				f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

				updated, err := f.handler.Handle(t.Context(),
					transitionCmd(t, id, to, map[string]any{"delivery_confirmed": true}))

				require.NoError(t, err)
				assert.Equal(t, to, updated.Status())

				require.Len(t, f.audits.appended, 1)
				entry := f.audits.appended[0]
				assert.Equal(t, audit.ActionStatusChange, entry.Action())
				assert.Equal(t, from.String(), entry.Before()["status"])
				assert.Equal(t, to.String(), entry.After()["status"])

				f.dispatcher.AssertNumberOfCalls(t, "Dispatch", 1)
				task := f.dispatcher.Calls[0].Arguments.Get(1).(ports.TransitionTask)
				assert.Equal(t, entry.ID(), task.TaskID)
				assert.Equal(t, from.String(), task.OldStatus)
				assert.Equal(t, to.String(), task.NewStatus)

				require.Len(t, f.outbox.enqueued, 1)
				assert.Equal(t, []string{entry.ID()}, f.outbox.marked)
				assert.Equal(t, []order.Transition{{From: from, To: to}}, f.observer.applied)
			})
		}
	}
}
