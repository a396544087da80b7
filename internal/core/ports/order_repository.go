package ports

import (
	"context"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order with its line items.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes every mutable field using the aggregate's version as a
	// compare-and-set token and increments the stored version. A version
	// mismatch yields ErrConcurrentModification.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its line items.
	// Returns errs.ObjectNotFoundError when no order has the id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate is Get with a row lock held until the surrounding
	// transaction ends. Outside a transaction it behaves like Get.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
