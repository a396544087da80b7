package commands_test

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"orderhub/internal/core/application/usecases/commands"
	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/identity"
	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/core/domain/model/shipping"
	"orderhub/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow  = time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)
	apiActor  = kernel.Actor{Type: kernel.ActorTypeAPI, ID: "ak_test"}
	discardLg = slog.New(slog.DiscardHandler)
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockAuditLogRepository struct {
	mock.Mock
	appended []*audit.Entry
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	if args.Error(0) == nil {
		m.appended = append(m.appended, entry)
	}
	return args.Error(0)
}

func (m *MockAuditLogRepository) ListByEntity(
	ctx context.Context,
	entityType audit.EntityType,
	entityID string,
) ([]*audit.Entry, error) {
	args := m.Called(ctx, entityType, entityID)
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func (m *MockAuditLogRepository) ListByActor(ctx context.Context, actor kernel.Actor) ([]*audit.Entry, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

type MockShippingLabelRepository struct{ mock.Mock }

func (m *MockShippingLabelRepository) Add(ctx context.Context, label *shipping.Label) error {
	return m.Called(ctx, label).Error(0)
}

func (m *MockShippingLabelRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*shipping.Label, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*shipping.Label), args.Error(1)
}

func (m *MockShippingLabelRepository) HasGeneratedLabel(ctx context.Context, orderID kernel.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

type MockIdentityRepository struct{ mock.Mock }

func (m *MockIdentityRepository) FindActiveByKeyID(ctx context.Context, keyID string) (*identity.Identity, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityRepository) GetByKeyID(ctx context.Context, keyID string) (*identity.Identity, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityRepository) Add(ctx context.Context, i *identity.Identity) error {
	return m.Called(ctx, i).Error(0)
}

func (m *MockIdentityRepository) Update(ctx context.Context, i *identity.Identity) error {
	return m.Called(ctx, i).Error(0)
}

// MockOrderUoW runs registered hooks when Commit succeeds, like the real
// unit of work.
type MockOrderUoW struct {
	mock.Mock
	hooks []ports.AfterCommitFunc
}

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	hooks := m.hooks
	m.hooks = nil
	for _, fn := range hooks {
		fn(ctx)
	}
	return nil
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	m.hooks = nil
	return m.Called(ctx).Error(0)
}

func (m *MockOrderUoW) AfterCommit(fn ports.AfterCommitFunc) {
	m.Called(fn)
	m.hooks = append(m.hooks, fn)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	return m.Called().Get(0).(ports.OrderRepository)
}

func (m *MockOrderUoW) AuditLogRepository() ports.AuditLogRepository {
	return m.Called().Get(0).(ports.AuditLogRepository)
}

func (m *MockOrderUoW) ShippingLabelRepository() ports.ShippingLabelRepository {
	return m.Called().Get(0).(ports.ShippingLabelRepository)
}

func (m *MockOrderUoW) TransitionOutbox() ports.TransitionOutbox {
	return m.Called().Get(0).(ports.TransitionOutbox)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	return m.Called().Get(0).(commands.OrderUoW)
}

type MockIdentityUoW struct{ mock.Mock }

func (m *MockIdentityUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockIdentityUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockIdentityUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockIdentityUoW) IdentityRepository() ports.IdentityRepository {
	return m.Called().Get(0).(ports.IdentityRepository)
}

type MockIdentityUoWFactory struct{ mock.Mock }

func (m *MockIdentityUoWFactory) Create() commands.IdentityUoW {
	return m.Called().Get(0).(commands.IdentityUoW)
}

type MockTransitionDispatcher struct{ mock.Mock }

func (m *MockTransitionDispatcher) Dispatch(ctx context.Context, task ports.TransitionTask) error {
	return m.Called(ctx, task).Error(0)
}

// fakeOutbox keeps tasks in memory. Marking a task removes it from the
// undelivered list.
type fakeOutbox struct {
	mu         sync.Mutex
	enqueueErr error
	markErr    error
	listErr    error
	enqueued   []ports.TransitionTask
	marked     []string
}

func (o *fakeOutbox) Enqueue(_ context.Context, task ports.TransitionTask) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.enqueueErr != nil {
		return o.enqueueErr
	}
	o.enqueued = append(o.enqueued, task)
	return nil
}

func (o *fakeOutbox) MarkDispatched(_ context.Context, taskID string, _ time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.markErr != nil {
		return o.markErr
	}
	o.marked = append(o.marked, taskID)
	return nil
}

func (o *fakeOutbox) ListUndispatched(_ context.Context, createdBefore time.Time, limit int) ([]ports.TransitionTask, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.listErr != nil {
		return nil, o.listErr
	}

	var tasks []ports.TransitionTask
	for _, task := range o.enqueued {
		if task.OccurredAt.After(createdBefore) || slices.Contains(o.marked, task.TaskID) {
			continue
		}
		if limit > 0 && len(tasks) == limit {
			break
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

type recordingObserver struct {
	mu         sync.Mutex
	applied    []order.Transition
	rejected   []order.TransitionErrorKind
	dispatchKO int
}

func (r *recordingObserver) TransitionApplied(from, to order.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, order.Transition{From: from, To: to})
}

func (r *recordingObserver) TransitionRejected(kind order.TransitionErrorKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, kind)
}

func (r *recordingObserver) DispatchFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatchKO++
}

// orderFixture builds an order in status with every confirmation field set.
// paymentRef may be empty to leave the reference unset.
func orderFixture(t *testing.T, id kernel.UUID, status order.Status, paymentRef string, version int) *order.Order {
	t.Helper()
	return carrierOrderFixture(t, id, status, paymentRef, "", version)
}

func carrierOrderFixture(t *testing.T, id kernel.UUID, status order.Status, paymentRef, carrier string, version int) *order.Order {
	t.Helper()
	price, err := kernel.AmountFromString("100.00")
	require.NoError(t, err)
	item, err := order.NewLineItem("SKU-1", "Widget", 1, price)
	require.NoError(t, err)
	address := kernel.NewUUID()

	var ref, carrierName *string
	if paymentRef != "" {
		ref = &paymentRef
	}
	if carrier != "" {
		carrierName = &carrier
	}

	o, err := order.RestoreOrder(order.RestoreOrderParams{
		NewOrderParams: order.NewOrderParams{
			ID:                id,
			ClientID:          "client-1",
			ShippingAddressID: &address,
			TotalAmount:       price,
			Items:             []order.LineItem{item},
			CreatedAt:         fixedNow.Add(-time.Hour),
		},
		Status:             status,
		PaymentReferenceID: ref,
		Carrier:            carrierName,
		Version:            version,
	})
	require.NoError(t, err)
	return o
}
