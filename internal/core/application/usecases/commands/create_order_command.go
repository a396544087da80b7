package commands

import (
	"errors"
	"fmt"
	"strings"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// LineItemInput is one requested line before validation.
type LineItemInput struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice string
}

// CreateOrderCommand opens a new order in the new status. Items, addresses and
// a positive total are only enforced later by the confirmation guard, so a
// draft may be created empty.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), "client-42",
//	    []LineItemInput{{SKU: "SKU-1", Name: "Widget", Quantity: 1, UnitPrice: "100.00"}},
//	    &shippingAddressID, nil, "", actor)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID           kernel.UUID
	clientID          string
	items             []order.LineItem
	shippingAddressID *kernel.UUID
	billingAddressID  *kernel.UUID
	totalAmount       kernel.Amount
	actor             kernel.Actor

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the input. An empty totalAmount defaults to
// the sum of the line subtotals.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	clientID string,
	items []LineItemInput,
	shippingAddressID, billingAddressID *kernel.UUID,
	totalAmount string,
	actor kernel.Actor,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		clientID:          strings.TrimSpace(clientID),
		shippingAddressID: shippingAddressID,
		billingAddressID:  billingAddressID,
		actor:             actor,
		guard:             guard.NewConstructorGuard(),
	}

	var actorErr error
	if !actor.IsValid() {
		actorErr = errs.NewValueIsInvalidError("actor")
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setItems(items),
		actorErr,
	); err != nil {
		return CreateOrderCommand{}, err
	}
	if err := cmd.setTotalAmount(totalAmount); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c CreateOrderCommand) Actor() kernel.Actor  { return c.actor }

// NewOrderParams converts the command into aggregate construction input.
func (c CreateOrderCommand) NewOrderParams() order.NewOrderParams {
	items := make([]order.LineItem, len(c.items))
	copy(items, c.items)
	return order.NewOrderParams{
		ID:                c.orderID,
		ClientID:          c.clientID,
		ShippingAddressID: c.shippingAddressID,
		BillingAddressID:  c.billingAddressID,
		TotalAmount:       c.totalAmount,
		Items:             items,
	}
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setItems(inputs []LineItemInput) error {
	items := make([]order.LineItem, 0, len(inputs))
	var itemErrs []error
	for i, in := range inputs {
		price, err := kernel.AmountFromString(in.UnitPrice)
		if err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("items[%d]: %w", i, err))
			continue
		}
		item, err := order.NewLineItem(in.SKU, in.Name, in.Quantity, price)
		if err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("items[%d]: %w", i, err))
			continue
		}
		items = append(items, item)
	}
	if err := errors.Join(itemErrs...); err != nil {
		return err
	}
	c.items = items
	return nil
}

func (c *CreateOrderCommand) setTotalAmount(raw string) error {
	if strings.TrimSpace(raw) == "" {
		total := kernel.ZeroAmount
		for _, item := range c.items {
			total = total.Add(item.Subtotal())
		}
		c.totalAmount = total
		return nil
	}
	total, err := kernel.AmountFromString(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	c.totalAmount = total
	return nil
}
