package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is the aggregate root of the order lifecycle.
//
// Invariants:
//   - id is a valid UUID
//   - status is always a member of the Status enumeration
//   - status is changed only by TransitionTo, which enforces the transition table
//   - totalAmount is non-negative (guaranteed by kernel.Amount)
//
// Fields required before confirmation (client, items, an address, a positive
// total) are deliberately optional here; the new->confirmed guard checks them.
type Order struct {
	id                 kernel.UUID
	status             Status
	clientID           string
	paymentReferenceID *string
	carrier            *string
	shippingAddressID  *kernel.UUID
	billingAddressID   *kernel.UUID
	totalAmount        kernel.Amount
	items              []LineItem
	// version is the optimistic lock counter maintained by the repository.
	version   int
	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// NewOrderParams groups the fields accepted when an order is opened.
type NewOrderParams struct {
	ID                kernel.UUID
	ClientID          string
	ShippingAddressID *kernel.UUID
	BillingAddressID  *kernel.UUID
	TotalAmount       kernel.Amount
	Items             []LineItem
	CreatedAt         time.Time
}

// NewOrder opens an order in the New status.
//
// Example:
//
//	item, _ := order.NewLineItem("SKU-1", "Widget", 1, price)
//	o, err := order.NewOrder(order.NewOrderParams{
//	    ID:                kernel.NewUUID(),
//	    ClientID:          "client-17",
//	    ShippingAddressID: &addressID,
//	    TotalAmount:       price,
//	    Items:             []order.LineItem{item},
//	    CreatedAt:         time.Now(),
//	})
func NewOrder(p NewOrderParams) (*Order, error) {
	o := &Order{
		status:            New,
		clientID:          strings.TrimSpace(p.ClientID),
		shippingAddressID: p.ShippingAddressID,
		billingAddressID:  p.BillingAddressID,
		totalAmount:       p.TotalAmount,
		createdAt:         p.CreatedAt.UTC(),
		updatedAt:         p.CreatedAt.UTC(),
		isConstructed:     true,
	}

	if err := errors.Join(
		o.setID(p.ID),
		o.setItems(p.Items),
		validateOptionalUUID("shipping address", p.ShippingAddressID),
		validateOptionalUUID("billing address", p.BillingAddressID),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrderParams carries every persisted field of an order.
type RestoreOrderParams struct {
	NewOrderParams

	Status             Status
	PaymentReferenceID *string
	Carrier            *string
	Version            int
	UpdatedAt          time.Time
}

// RestoreOrder rebuilds an order read from storage. Status must be valid; it is
// not checked against the transition table.
func RestoreOrder(p RestoreOrderParams) (*Order, error) {
	o, err := NewOrder(p.NewOrderParams)
	if err != nil {
		return nil, err
	}
	if err = p.Status.Validate(); err != nil {
		return nil, err
	}
	if p.Version < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("version", fmt.Errorf("%d is negative", p.Version))
	}

	o.status = p.Status
	o.paymentReferenceID = normalizeOptional(p.PaymentReferenceID)
	o.carrier = normalizeOptional(p.Carrier)
	o.version = p.Version
	o.updatedAt = p.UpdatedAt.UTC()
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.UUID                 { return o.id }
func (o *Order) Status() Status                  { return o.status }
func (o *Order) ClientID() string                { return o.clientID }
func (o *Order) PaymentReferenceID() *string     { return o.paymentReferenceID }
func (o *Order) Carrier() *string                { return o.carrier }
func (o *Order) ShippingAddressID() *kernel.UUID { return o.shippingAddressID }
func (o *Order) BillingAddressID() *kernel.UUID  { return o.billingAddressID }
func (o *Order) TotalAmount() kernel.Amount      { return o.totalAmount }
func (o *Order) Version() int                    { return o.version }
func (o *Order) CreatedAt() time.Time            { return o.createdAt }
func (o *Order) UpdatedAt() time.Time            { return o.updatedAt }

// Items returns a copy of the line items.
func (o *Order) Items() []LineItem {
	items := make([]LineItem, len(o.items))
	copy(items, o.items)
	return items
}

// HasAddress reports whether a shipping or billing address is attached.
func (o *Order) HasAddress() bool {
	return o.shippingAddressID != nil || o.billingAddressID != nil
}

// HasPaymentReference reports whether a non-blank payment reference is set.
func (o *Order) HasPaymentReference() bool {
	return o.paymentReferenceID != nil && strings.TrimSpace(*o.paymentReferenceID) != ""
}

// HasCarrier reports whether a carrier has been assigned.
func (o *Order) HasCarrier() bool {
	return o.carrier != nil && strings.TrimSpace(*o.carrier) != ""
}

// IsEqual compares orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// TransitionTo moves the order to target if the transition table allows it.
// Business guards are not evaluated here.
func (o *Order) TransitionTo(target Status, at time.Time) error {
	if err := target.Validate(); err != nil {
		return NewIllegalTransitionError(o.status, target)
	}
	if !o.status.CanTransitionTo(target) {
		return NewIllegalTransitionError(o.status, target)
	}
	o.status = target
	o.updatedAt = at.UTC()
	return nil
}

// SetPaymentReference records the payment provider's reference. It is refused
// once the order has left the pre-payment states.
func (o *Order) SetPaymentReference(reference string, at time.Time) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return errs.NewValueIsRequiredError("payment reference")
	}
	switch o.status {
	case New, Confirmed, OnHold, Failed:
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to set a payment reference", o.status),
		)
	}
	o.paymentReferenceID = &reference
	o.updatedAt = at.UTC()
	return nil
}

// AssignCarrier sets the carrier that will ship the order.
func (o *Order) AssignCarrier(carrier string, at time.Time) error {
	carrier = strings.TrimSpace(carrier)
	if carrier == "" {
		return errs.NewValueIsRequiredError("carrier")
	}
	if o.status.IsTerminal() || o.status == Fulfilled {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to assign a carrier", o.status),
		)
	}
	o.carrier = &carrier
	o.updatedAt = at.UTC()
	return nil
}

// Snapshot returns every field as plain values, suitable for audit payloads.
func (o *Order) Snapshot() map[string]any {
	items := make([]any, 0, len(o.items))
	for _, item := range o.items {
		items = append(items, item.snapshot())
	}
	return map[string]any{
		"id":                   o.id.String(),
		"status":               o.status.String(),
		"client_id":            o.clientID,
		"payment_reference_id": optionalString(o.paymentReferenceID),
		"carrier":              optionalString(o.carrier),
		"shipping_address_id":  optionalUUID(o.shippingAddressID),
		"billing_address_id":   optionalUUID(o.billingAddressID),
		"total_amount":         o.totalAmount.String(),
		"items":                items,
		"version":              o.version,
	}
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setItems(items []LineItem) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err)
		}
	}
	o.items = make([]LineItem, len(items))
	copy(o.items, items)
	return nil
}

func validateOptionalUUID(name string, id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return nil
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func optionalUUID(v *kernel.UUID) any {
	if v == nil {
		return nil
	}
	return v.String()
}
