package commands

import (
	"errors"
	"strings"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

var ErrRegisterShippingLabelCommandIsNotConstructed = errors.New(
	"RegisterShippingLabelCommand must be created via NewRegisterShippingLabelCommand constructor",
)

// RegisterShippingLabelCommand records a label produced by the carrier
// integration. With a tracking number the label is generated immediately.
type RegisterShippingLabelCommand struct {
	labelID        kernel.UUID
	orderID        kernel.UUID
	carrier        string
	trackingNumber string
	actor          kernel.Actor

	guard guard.ConstructorGuard
}

func NewRegisterShippingLabelCommand(
	labelID, orderID kernel.UUID,
	carrier, trackingNumber string,
	actor kernel.Actor,
) (RegisterShippingLabelCommand, error) {
	carrier = strings.TrimSpace(carrier)

	var validationErrs []error
	if err := labelID.Validate(); err != nil {
		validationErrs = append(validationErrs, err)
	}
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
		return RegisterShippingLabelCommand{}, err
	}

	return RegisterShippingLabelCommand{
		labelID:        labelID,
		orderID:        orderID,
		carrier:        carrier,
		trackingNumber: strings.TrimSpace(trackingNumber),
		actor:          actor,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterShippingLabelCommand) Validate() error {
	return c.guard.Validate(ErrRegisterShippingLabelCommandIsNotConstructed)
}

func (c RegisterShippingLabelCommand) LabelID() kernel.UUID   { return c.labelID }
func (c RegisterShippingLabelCommand) OrderID() kernel.UUID   { return c.orderID }
func (c RegisterShippingLabelCommand) Carrier() string        { return c.carrier }
func (c RegisterShippingLabelCommand) TrackingNumber() string { return c.trackingNumber }
func (c RegisterShippingLabelCommand) Actor() kernel.Actor    { return c.actor }
