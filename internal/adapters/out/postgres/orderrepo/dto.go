// Package orderrepo maps order aggregates and their line items to the
// orders and order_items tables.
package orderrepo

import (
	"time"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders row. Status is stored as its code so the column
// stays readable in ad-hoc queries.
type OrderDTO struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Status             string          `gorm:"size:32;not null;index"`
	ClientID           string          `gorm:"size:255"`
	PaymentReferenceID *string         `gorm:"size:255"`
	Carrier            *string         `gorm:"size:64"`
	ShippingAddressID  *uuid.UUID      `gorm:"type:uuid"`
	BillingAddressID   *uuid.UUID      `gorm:"type:uuid"`
	TotalAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Version            int             `gorm:"not null"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
	Items              []OrderItemDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one order_items row. LineNumber keeps the request order.
type OrderItemDTO struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber int             `gorm:"not null"`
	SKU        string          `gorm:"size:128;not null"`
	Name       string          `gorm:"size:255"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(aggregate.Items()))
	for i, item := range aggregate.Items() {
		items = append(items, OrderItemDTO{
			OrderID:    aggregate.ID().Bytes(),
			LineNumber: i,
			SKU:        item.SKU(),
			Name:       item.Name(),
			Quantity:   item.Quantity(),
			UnitPrice:  item.UnitPrice().Decimal(),
		})
	}

	return OrderDTO{
		ID:                 aggregate.ID().Bytes(),
		Status:             aggregate.Status().String(),
		ClientID:           aggregate.ClientID(),
		PaymentReferenceID: aggregate.PaymentReferenceID(),
		Carrier:            aggregate.Carrier(),
		ShippingAddressID:  optionalUUID(aggregate.ShippingAddressID()),
		BillingAddressID:   optionalUUID(aggregate.BillingAddressID()),
		TotalAmount:        aggregate.TotalAmount().Decimal(),
		Version:            aggregate.Version(),
		CreatedAt:          aggregate.CreatedAt(),
		UpdatedAt:          aggregate.UpdatedAt(),
		Items:              items,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	total, err := kernel.NewAmount(dto.TotalAmount)
	if err != nil {
		return nil, err
	}

	shippingAddressID, err := restoreUUID(dto.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	billingAddressID, err := restoreUUID(dto.BillingAddressID)
	if err != nil {
		return nil, err
	}

	items := make([]order.LineItem, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		price, priceErr := kernel.NewAmount(itemDTO.UnitPrice)
		if priceErr != nil {
			return nil, priceErr
		}
		item, itemErr := order.NewLineItem(itemDTO.SKU, itemDTO.Name, itemDTO.Quantity, price)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(order.RestoreOrderParams{
		NewOrderParams: order.NewOrderParams{
			ID:                id,
			ClientID:          dto.ClientID,
			ShippingAddressID: shippingAddressID,
			BillingAddressID:  billingAddressID,
			TotalAmount:       total,
			Items:             items,
			CreatedAt:         dto.CreatedAt,
		},
		Status:             status,
		PaymentReferenceID: dto.PaymentReferenceID,
		Carrier:            dto.Carrier,
		Version:            dto.Version,
		UpdatedAt:          dto.UpdatedAt,
	})
}

func optionalUUID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func restoreUUID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil //nolint:nilnil // absent optional reference
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
