package commands

import (
	"errors"
	"strings"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

var ErrSetPaymentReferenceCommandIsNotConstructed = errors.New(
	"SetPaymentReferenceCommand must be created via NewSetPaymentReferenceCommand constructor",
)

// SetPaymentReferenceCommand records the payment provider's reference on an
// order, which the confirmed -> paid guard requires.
type SetPaymentReferenceCommand struct {
	orderID   kernel.UUID
	reference string
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewSetPaymentReferenceCommand(
	orderID kernel.UUID,
	reference string,
	actor kernel.Actor,
) (SetPaymentReferenceCommand, error) {
	reference = strings.TrimSpace(reference)

	var validationErrs []error
	if err := orderID.Validate(); err != nil {
		validationErrs = append(validationErrs, err)
	}
	if reference == "" {
		validationErrs = append(validationErrs, errs.NewValueIsRequiredError("payment reference"))
	}
	if !actor.IsValid() {
		validationErrs = append(validationErrs, errs.NewValueIsInvalidError("actor"))
	}
	if err := errors.Join(validationErrs...); err != nil {
		return SetPaymentReferenceCommand{}, err
	}

	return SetPaymentReferenceCommand{
		orderID:   orderID,
		reference: reference,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SetPaymentReferenceCommand) Validate() error {
	return c.guard.Validate(ErrSetPaymentReferenceCommandIsNotConstructed)
}

func (c SetPaymentReferenceCommand) OrderID() kernel.UUID { return c.orderID }
func (c SetPaymentReferenceCommand) Reference() string    { return c.reference }
func (c SetPaymentReferenceCommand) Actor() kernel.Actor  { return c.actor }
