package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads an order and its items with two statements.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError when the order does not exist.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	var (
		resp               GetOrderQueryResponse
		id                 uuid.UUID
		status             string
		paymentReferenceID sql.NullString
		carrier            sql.NullString
		shippingAddressID  uuid.NullUUID
		billingAddressID   uuid.NullUUID
		totalAmount        decimal.Decimal
		createdAt          time.Time
		updatedAt          time.Time
	)

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			client_id,
			payment_reference_id,
			carrier,
			shipping_address_id,
			billing_address_id,
			total_amount,
			version,
			created_at,
			updated_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	err := row.Scan(
		&id,
		&status,
		&resp.ClientID,
		&paymentReferenceID,
		&carrier,
		&shippingAddressID,
		&billingAddressID,
		&totalAmount,
		&resp.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return GetOrderQueryResponse{}, errs.NewInfrastructureError("select order", err)
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.Status, err = order.ParseStatus(status); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.TotalAmount, err = kernel.NewAmount(totalAmount); err != nil {
		return GetOrderQueryResponse{}, err
	}
	resp.PaymentReferenceID = nullableString(paymentReferenceID)
	resp.Carrier = nullableString(carrier)
	if resp.ShippingAddressID, err = nullableUUID(shippingAddressID); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.BillingAddressID, err = nullableUUID(billingAddressID); err != nil {
		return GetOrderQueryResponse{}, err
	}
	resp.CreatedAt = createdAt.UTC()
	resp.UpdatedAt = updatedAt.UTC()

	if resp.Items, err = h.items(ctx, query.OrderID()); err != nil {
		return GetOrderQueryResponse{}, err
	}

	return resp, nil
}

func (h GetOrderQueryHandler) items(ctx context.Context, orderID kernel.UUID) ([]OrderItemResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			sku,
			name,
			quantity,
			unit_price
		FROM order_items
		WHERE order_id = ?
		ORDER BY line_number
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, errs.NewInfrastructureError("select order items", err)
	}
	defer rows.Close()

	items := make([]OrderItemResponse, 0)
	for rows.Next() {
		var item OrderItemResponse
		var unitPrice decimal.Decimal

		if err = rows.Scan(&item.SKU, &item.Name, &item.Quantity, &unitPrice); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = kernel.NewAmount(unitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableUUID(v uuid.NullUUID) (*kernel.UUID, error) {
	if !v.Valid {
		return nil, nil //nolint:nilnil // NULL column
	}
	id, err := kernel.UUIDFromBytes(v.UUID[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
