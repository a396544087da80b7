package commands

import (
	"errors"
	"strings"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand requests a status change of one order.
//
// Example:
//
//	actor := kernel.ResolveActor("", "", kernel.Caller{IdentityKeyID: caller.KeyID()})
//	cmd, err := NewTransitionOrderCommand(orderID, order.Paid, "payment captured", nil, actor)
//	if err != nil {
//	    return err
//	}
//	updated, err := handler.Handle(ctx, cmd)
type TransitionOrderCommand struct {
	orderID  kernel.UUID
	target   order.Status
	reason   string
	metadata map[string]any
	actor    kernel.Actor

	guard guard.ConstructorGuard
}

func NewTransitionOrderCommand(
	orderID kernel.UUID,
	target order.Status,
	reason string,
	metadata map[string]any,
	actor kernel.Actor,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{
		reason:   strings.TrimSpace(reason),
		metadata: copyMetadata(metadata),
		guard:    guard.NewConstructorGuard(),
	}

	var actorErr error
	if !actor.IsValid() {
		actorErr = errs.NewValueIsInvalidError("actor")
	}
	cmd.actor = actor

	if err := errors.Join(
		orderID.Validate(),
		target.Validate(),
		actorErr,
	); err != nil {
		return TransitionOrderCommand{}, err
	}

	cmd.orderID = orderID
	cmd.target = target
	return cmd, nil
}

func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) OrderID() kernel.UUID  { return c.orderID }
func (c TransitionOrderCommand) Target() order.Status  { return c.target }
func (c TransitionOrderCommand) Reason() string        { return c.reason }
func (c TransitionOrderCommand) Actor() kernel.Actor   { return c.actor }

// Metadata returns a copy of the free-form transition context.
func (c TransitionOrderCommand) Metadata() map[string]any {
	return copyMetadata(c.metadata)
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
