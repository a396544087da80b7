package ports

import (
	"context"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/shipping"
)

type ShippingLabelRepository interface {
	Add(ctx context.Context, label *shipping.Label) error

	// ListByOrder returns the labels of an order, oldest first.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*shipping.Label, error)

	// HasGeneratedLabel reports whether any label of the order is generated.
	HasGeneratedLabel(ctx context.Context, orderID kernel.UUID) (bool, error)
}
