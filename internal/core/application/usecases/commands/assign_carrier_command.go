package commands

import (
	"errors"
	"strings"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

var ErrAssignCarrierCommandIsNotConstructed = errors.New(
	"AssignCarrierCommand must be created via NewAssignCarrierCommand constructor",
)

// AssignCarrierCommand sets the carrier that ships an order.
type AssignCarrierCommand struct {
	orderID kernel.UUID
	carrier string
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewAssignCarrierCommand(orderID kernel.UUID, carrier string, actor kernel.Actor) (AssignCarrierCommand, error) {
	carrier = strings.TrimSpace(carrier)

	var validationErrs []error
	if err := orderID.Validate(); err != nil {
		validationErrs = append(validationErrs, err)
	}
	if carrier == "" {
		validationErrs = append(validationErrs, errs.NewValueIsRequiredError("carrier"))
	}
	if !actor.IsValid() {
		validationErrs = append(validationErrs, errs.NewValueIsInvalidError("actor"))
	}
	if err := errors.Join(validationErrs...); err != nil {
		return AssignCarrierCommand{}, err
	}

	return AssignCarrierCommand{
		orderID: orderID,
		carrier: carrier,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c AssignCarrierCommand) Validate() error {
	return c.guard.Validate(ErrAssignCarrierCommandIsNotConstructed)
}

func (c AssignCarrierCommand) OrderID() kernel.UUID { return c.orderID }
func (c AssignCarrierCommand) Carrier() string      { return c.carrier }
func (c AssignCarrierCommand) Actor() kernel.Actor  { return c.actor }
