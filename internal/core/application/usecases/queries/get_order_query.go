package queries

import (
	"errors"
	"time"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery loads one order with its line items.
//
// Example:
//
//	query, err := NewGetOrderQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	resp, err := NewGetOrderQueryHandler(db).Handle(ctx, query)
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }

// GetOrderQueryResponse is the stored state of an order.
type GetOrderQueryResponse struct {
	ID                 kernel.UUID
	Status             order.Status
	ClientID           string
	PaymentReferenceID *string
	Carrier            *string
	ShippingAddressID  *kernel.UUID
	BillingAddressID   *kernel.UUID
	TotalAmount        kernel.Amount
	Version            int
	Items              []OrderItemResponse
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type OrderItemResponse struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice kernel.Amount
}
