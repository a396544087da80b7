// Package labelrepo stores shipping labels.
package labelrepo

import (
	"time"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/shipping"

	"github.com/google/uuid"
)

type ShippingLabelDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index:idx_shipping_labels_order_status,priority:1"`
	Carrier        string    `gorm:"size:64;not null"`
	TrackingNumber string    `gorm:"size:128"`
	Status         string    `gorm:"size:16;not null;index:idx_shipping_labels_order_status,priority:2"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (ShippingLabelDTO) TableName() string {
	return "shipping_labels"
}

func fromDomain(label *shipping.Label) ShippingLabelDTO {
	return ShippingLabelDTO{
		ID:             label.ID().Bytes(),
		OrderID:        label.OrderID().Bytes(),
		Carrier:        label.Carrier(),
		TrackingNumber: label.TrackingNumber(),
		Status:         label.Status().String(),
		CreatedAt:      label.CreatedAt(),
	}
}

func toDomain(dto ShippingLabelDTO) (*shipping.Label, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	status, err := shipping.ParseLabelStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	return shipping.RestoreLabel(id, orderID, dto.Carrier, dto.TrackingNumber, status, dto.CreatedAt)
}
