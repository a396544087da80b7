package order

import (
	"errors"
	"fmt"
	"strings"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

var ErrLineItemIsNotConstructed = errors.New("LineItem must be created via NewLineItem constructor")

// LineItem is one ordered product line.
type LineItem struct {
	sku       string
	name      string
	quantity  int
	unitPrice kernel.Amount

	guard guard.ConstructorGuard
}

// NewLineItem validates sku and quantity. The unit price may be zero
// (free samples); the order total guard catches all-free orders.
func NewLineItem(sku, name string, quantity int, unitPrice kernel.Amount) (LineItem, error) {
	sku = strings.TrimSpace(sku)

	var validationErrs []error
	if sku == "" {
		validationErrs = append(validationErrs, errs.NewValueIsRequiredError("sku"))
	}
	if quantity <= 0 {
		validationErrs = append(validationErrs, errs.NewValueIsInvalidErrorWithCause(
			"quantity", fmt.Errorf("%d is not greater than 0", quantity),
		))
	}
	if err := errors.Join(validationErrs...); err != nil {
		return LineItem{}, err
	}

	return LineItem{
		sku:       sku,
		name:      strings.TrimSpace(name),
		quantity:  quantity,
		unitPrice: unitPrice,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (li LineItem) Validate() error {
	return li.guard.Validate(ErrLineItemIsNotConstructed)
}

func (li LineItem) SKU() string              { return li.sku }
func (li LineItem) Name() string             { return li.name }
func (li LineItem) Quantity() int            { return li.quantity }
func (li LineItem) UnitPrice() kernel.Amount { return li.unitPrice }

// Subtotal is unit price times quantity.
func (li LineItem) Subtotal() kernel.Amount {
	return li.unitPrice.Mul(li.quantity)
}

func (li LineItem) snapshot() map[string]any {
	return map[string]any{
		"sku":        li.sku,
		"name":       li.name,
		"quantity":   li.quantity,
		"unit_price": li.unitPrice.String(),
	}
}
