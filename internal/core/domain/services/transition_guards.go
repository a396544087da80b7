package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/pkg/errs"
)

// DeliveryConfirmedKey is the transition metadata key carrying the delivery
// confirmation signal for fulfilled -> completed.
const DeliveryConfirmedKey = "delivery_confirmed"

// LabelLookup answers whether an order has a usable shipping label. Command
// handlers pass the repository bound to their own transaction.
type LabelLookup interface {
	HasGeneratedLabel(ctx context.Context, orderID kernel.UUID) (bool, error)
}

// GuardFunc returns the violated invariants for a candidate transition. A
// non-nil error means the check itself could not run.
type GuardFunc func(ctx context.Context, o *order.Order, metadata map[string]any) ([]string, error)

// TransitionGuards evaluates the business invariants attached to specific
// status transitions. Pairs without an entry have no guard.
type TransitionGuards struct {
	guards map[order.Transition]GuardFunc
}

// NewTransitionGuards builds the guard table. labels is consulted for
// paid -> fulfilled.
func NewTransitionGuards(labels LabelLookup) TransitionGuards {
	return TransitionGuards{
		guards: map[order.Transition]GuardFunc{
			{From: order.New, To: order.Confirmed}:       confirmGuard,
			{From: order.Confirmed, To: order.Paid}:      payGuard,
			{From: order.Paid, To: order.Fulfilled}:      fulfilGuard(labels),
			{From: order.Fulfilled, To: order.Completed}: completeGuard,
		},
	}
}

// Check runs the guard for o.Status() -> target. It returns a GuardFailed
// *order.TransitionError listing every violation, or an infrastructure error
// when a lookup fails. It never mutates o.
func (g TransitionGuards) Check(ctx context.Context, o *order.Order, target order.Status, metadata map[string]any) error {
	guard, ok := g.guards[order.Transition{From: o.Status(), To: target}]
	if !ok {
		return nil
	}

	violations, err := guard(ctx, o, metadata)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}

	return order.NewGuardFailedError(o.Status(), target, fmt.Sprintf(
		"cannot transition order from %s to %s: %s",
		o.Status(), target, strings.Join(violations, "; "),
	))
}

// HasGuard reports whether a guard is registered for t.
func (g TransitionGuards) HasGuard(t order.Transition) bool {
	_, ok := g.guards[t]
	return ok
}

func confirmGuard(_ context.Context, o *order.Order, _ map[string]any) ([]string, error) {
	var violations []string
	if strings.TrimSpace(o.ClientID()) == "" {
		violations = append(violations, "client reference is missing")
	}
	if len(o.Items()) == 0 {
		violations = append(violations, "order has no line items")
	}
	if !o.HasAddress() {
		violations = append(violations, "a shipping or billing address is required")
	}
	if !o.TotalAmount().IsPositive() {
		violations = append(violations, "total amount must be greater than zero")
	}
	return violations, nil
}

func payGuard(_ context.Context, o *order.Order, _ map[string]any) ([]string, error) {
	if !o.HasPaymentReference() {
		return []string{"payment reference identifier is missing"}, nil
	}
	return nil, nil
}

func fulfilGuard(labels LabelLookup) GuardFunc {
	return func(ctx context.Context, o *order.Order, _ map[string]any) ([]string, error) {
		var violations []string
		if !o.HasCarrier() {
			violations = append(violations, "no carrier assigned")
		}
		if o.ShippingAddressID() == nil {
			violations = append(violations, "shipping address is missing")
		}

		if labels == nil {
			return append(violations, "no generated shipping label"), nil
		}
		generated, err := labels.HasGeneratedLabel(ctx, o.ID())
		if err != nil {
			return nil, errs.NewInfrastructureError("look up shipping labels", err)
		}
		if !generated {
			violations = append(violations, "no generated shipping label")
		}
		return violations, nil
	}
}

// completeGuard fails only on an explicit negative confirmation. An absent
// signal is the manual confirmation path.
func completeGuard(_ context.Context, _ *order.Order, metadata map[string]any) ([]string, error) {
	raw, ok := metadata[DeliveryConfirmedKey]
	if !ok || raw == nil {
		return nil, nil
	}
	if confirmed, known := parseConfirmation(raw); known && !confirmed {
		return []string{"delivery has not been confirmed"}, nil
	}
	return nil, nil
}

func parseConfirmation(v any) (value, known bool) {
	switch typed := v.(type) {
	case bool:
		return typed, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(typed))
		return b, err == nil
	case float64:
		return typed != 0, true
	case int:
		return typed != 0, true
	default:
		return false, false
	}
}
