package shipping

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

var (
	ErrLabelIsNotConstructed = errors.New("Label must be created via NewLabel constructor")
	ErrCarrierIsRequired     = errs.NewValueIsRequiredError("carrier")
	ErrTrackingIsRequired    = errs.NewValueIsRequiredError("tracking number")
)

// Label is a shipping label registered against an order.
//
// A label starts pending, or generated when the carrier already returned a
// tracking number. A voided label never counts towards fulfilment.
type Label struct {
	id             kernel.UUID
	orderID        kernel.UUID
	carrier        string
	trackingNumber string
	status         LabelStatus
	createdAt      time.Time

	guard guard.ConstructorGuard
}

// NewLabel registers a label. An empty trackingNumber leaves it pending.
func NewLabel(id, orderID kernel.UUID, carrier, trackingNumber string, createdAt time.Time) (*Label, error) {
	status := LabelPending
	if strings.TrimSpace(trackingNumber) != "" {
		status = LabelGenerated
	}
	return RestoreLabel(id, orderID, carrier, trackingNumber, status, createdAt)
}

// RestoreLabel rebuilds a stored label.
func RestoreLabel(
	id, orderID kernel.UUID,
	carrier, trackingNumber string,
	status LabelStatus,
	createdAt time.Time,
) (*Label, error) {
	carrier = strings.TrimSpace(carrier)
	trackingNumber = strings.TrimSpace(trackingNumber)

	var validationErrs []error
	if err := id.Validate(); err != nil {
		validationErrs = append(validationErrs, err)
	}
	if err := orderID.Validate(); err != nil {
		validationErrs = append(validationErrs, errs.NewValueIsInvalidErrorWithCause("order id", err))
	}
	if carrier == "" {
		validationErrs = append(validationErrs, ErrCarrierIsRequired)
	}
	if err := status.Validate(); err != nil {
		validationErrs = append(validationErrs, err)
	}
	if status == LabelGenerated && trackingNumber == "" {
		validationErrs = append(validationErrs, ErrTrackingIsRequired)
	}
	if err := errors.Join(validationErrs...); err != nil {
		return nil, err
	}

	return &Label{
		id:             id,
		orderID:        orderID,
		carrier:        carrier,
		trackingNumber: trackingNumber,
		status:         status,
		createdAt:      createdAt.UTC(),
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (l *Label) Validate() error {
	if l == nil {
		return ErrLabelIsNotConstructed
	}
	return l.guard.Validate(ErrLabelIsNotConstructed)
}

func (l *Label) ID() kernel.UUID        { return l.id }
func (l *Label) OrderID() kernel.UUID   { return l.orderID }
func (l *Label) Carrier() string        { return l.carrier }
func (l *Label) TrackingNumber() string { return l.trackingNumber }
func (l *Label) Status() LabelStatus    { return l.status }
func (l *Label) CreatedAt() time.Time   { return l.createdAt }

// IsGenerated reports whether the label is usable for fulfilment.
func (l *Label) IsGenerated() bool {
	return l.status == LabelGenerated
}

// MarkGenerated stores the carrier's tracking number.
func (l *Label) MarkGenerated(trackingNumber string) error {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return ErrTrackingIsRequired
	}
	if l.status == LabelVoided {
		return errs.NewValueIsInvalidErrorWithCause("label status", fmt.Errorf("voided label %s cannot be generated", l.id))
	}
	l.trackingNumber = trackingNumber
	l.status = LabelGenerated
	return nil
}

// Void retires the label.
func (l *Label) Void() {
	l.status = LabelVoided
}

// Snapshot returns the label fields for audit payloads.
func (l *Label) Snapshot() map[string]any {
	return map[string]any{
		"id":              l.id.String(),
		"order_id":        l.orderID.String(),
		"carrier":         l.carrier,
		"tracking_number": l.trackingNumber,
		"status":          l.status.String(),
	}
}
