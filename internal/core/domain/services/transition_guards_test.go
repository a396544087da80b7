package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/core/domain/services"
	"orderhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLabelLookup struct{ mock.Mock }

func (m *MockLabelLookup) HasGeneratedLabel(ctx context.Context, orderID kernel.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func amount(t *testing.T, s string) kernel.Amount {
	t.Helper()
	a, err := kernel.AmountFromString(s)
	require.NoError(t, err)
	return a
}

func readyOrder(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	item, err := order.NewLineItem("SKU-1", "Widget", 1, amount(t, "100.00"))
	require.NoError(t, err)
	address := kernel.NewUUID()
	ref := "pay_1"
	carrier := "DHL"

	o, err := order.RestoreOrder(order.RestoreOrderParams{
		NewOrderParams: order.NewOrderParams{
			ID:                kernel.NewUUID(),
			ClientID:          "client-1",
			ShippingAddressID: &address,
			TotalAmount:       amount(t, "100.00"),
			Items:             []order.LineItem{item},
			CreatedAt:         now,
		},
		Status:             status,
		PaymentReferenceID: &ref,
		Carrier:            &carrier,
	})
	require.NoError(t, err)
	return o
}

func emptyOrder(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(order.RestoreOrderParams{
		NewOrderParams: order.NewOrderParams{ID: kernel.NewUUID(), CreatedAt: now},
		Status:         status,
	})
	require.NoError(t, err)
	return o
}

func requireGuardFailure(t *testing.T, err error, contains ...string) {
	t.Helper()
	require.ErrorIs(t, err, order.ErrGuardFailed)
	var transitionErr *order.TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, order.TransitionGuardFailed, transitionErr.Kind)
	for _, s := range contains {
		assert.Contains(t, transitionErr.Message, s)
	}
}

func TestTransitionGuards_Confirm(t *testing.T) {
	guards := services.NewTransitionGuards(nil)

	t.Run("complete order passes", func(t *testing.T) {
		require.NoError(t, guards.Check(t.Context(), readyOrder(t, order.New), order.Confirmed, nil))
	})

	t.Run("reports every violation", func(t *testing.T) {
		err := guards.Check(t.Context(), emptyOrder(t, order.New), order.Confirmed, nil)

		requireGuardFailure(t, err,
			"cannot transition order from new to confirmed",
			"client reference is missing",
			"order has no line items",
			"a shipping or billing address is required",
			"total amount must be greater than zero",
		)
	})
}

func TestTransitionGuards_Pay(t *testing.T) {
	guards := services.NewTransitionGuards(nil)

	err := guards.Check(t.Context(), emptyOrder(t, order.Confirmed), order.Paid, nil)
	requireGuardFailure(t, err, "payment reference identifier is missing")

	require.NoError(t, guards.Check(t.Context(), readyOrder(t, order.Confirmed), order.Paid, nil))
}

func TestTransitionGuards_Fulfil(t *testing.T) {
	t.Run("passes with carrier, address and generated label", func(t *testing.T) {
		labels := &MockLabelLookup{}
		o := readyOrder(t, order.Paid)
		labels.On("HasGeneratedLabel", mock.Anything, o.ID()).Return(true, nil).Once()

		require.NoError(t, services.NewTransitionGuards(labels).Check(t.Context(), o, order.Fulfilled, nil))
		labels.AssertExpectations(t)
	})

	t.Run("fails without generated label", func(t *testing.T) {
		labels := &MockLabelLookup{}
		o := emptyOrder(t, order.Paid)
		labels.On("HasGeneratedLabel", mock.Anything, o.ID()).Return(false, nil).Once()

		err := services.NewTransitionGuards(labels).Check(t.Context(), o, order.Fulfilled, nil)

		requireGuardFailure(t, err, "no carrier assigned", "shipping address is missing", "no generated shipping label")
	})

	t.Run("lookup failure is an infrastructure error", func(t *testing.T) {
		labels := &MockLabelLookup{}
		o := readyOrder(t, order.Paid)
		labels.On("HasGeneratedLabel", mock.Anything, o.ID()).Return(false, errors.New("connection reset")).Once()

		err := services.NewTransitionGuards(labels).Check(t.Context(), o, order.Fulfilled, nil)

		require.Error(t, err)
		assert.True(t, errs.IsInfrastructure(err))
		assert.NotErrorIs(t, err, order.ErrGuardFailed)
	})
}

func TestTransitionGuards_Complete(t *testing.T) {
	guards := services.NewTransitionGuards(nil)
	o := emptyOrder(t, order.Fulfilled)

	tests := []struct {
		name     string
		metadata map[string]any
		fails    bool
	}{
		{"absent signal is the manual path", nil, false},
		{"confirmed", map[string]any{services.DeliveryConfirmedKey: true}, false},
		{"explicit false", map[string]any{services.DeliveryConfirmedKey: false}, true},
		{"string false", map[string]any{services.DeliveryConfirmedKey: "false"}, true},
		{"numeric zero", map[string]any{services.DeliveryConfirmedKey: float64(0)}, true},
		{"unrecognized value", map[string]any{services.DeliveryConfirmedKey: "maybe"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guards.Check(t.Context(), o, order.Completed, tt.metadata)
			if tt.fails {
				requireGuardFailure(t, err, "delivery has not been confirmed")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionGuards_UnguardedPairs(t *testing.T) {
	guards := services.NewTransitionGuards(nil)

	assert.True(t, guards.HasGuard(order.Transition{From: order.New, To: order.Confirmed}))
	assert.False(t, guards.HasGuard(order.Transition{From: order.New, To: order.Cancelled}))
	require.NoError(t, guards.Check(t.Context(), emptyOrder(t, order.New), order.Cancelled, nil))
	require.NoError(t, guards.Check(t.Context(), emptyOrder(t, order.OnHold), order.Paid, nil))
}

func TestTransitionGuards_DoNotMutate(t *testing.T) {
	guards := services.NewTransitionGuards(nil)
	o := emptyOrder(t, order.New)
	before := o.Snapshot()

	_ = guards.Check(t.Context(), o, order.Confirmed, nil)

	assert.Equal(t, before, o.Snapshot())
	assert.Equal(t, order.New, o.Status())
}
