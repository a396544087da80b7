package http

import (
	"time"

	"orderhub/internal/core/application/usecases/queries"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/core/domain/model/shipping"
)

// Error is the body of every non-authentication failure.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TransitionError is the 422 body of a rejected transition.
type TransitionError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// AuthError is the single 401 body, whatever check failed.
type AuthError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type NewLineItem struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type NewOrder struct {
	ID                string        `json:"id,omitempty"`
	ClientID          string        `json:"clientId"`
	Items             []NewLineItem `json:"items,omitempty"`
	ShippingAddressID string        `json:"shippingAddressId,omitempty"`
	BillingAddressID  string        `json:"billingAddressId,omitempty"`
	TotalAmount       string        `json:"totalAmount,omitempty"`
}

type TransitionRequest struct {
	TargetStatus string         `json:"targetStatus"`
	Reason       string         `json:"reason,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type PaymentReferenceRequest struct {
	PaymentReferenceID string `json:"paymentReferenceId"`
}

type CarrierRequest struct {
	Carrier string `json:"carrier"`
}

type ShippingLabelRequest struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
}

type LineItem struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type Order struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	StatusDisplay      string     `json:"statusDisplay"`
	StatusColor        string     `json:"statusColor"`
	ClientID           string     `json:"clientId"`
	PaymentReferenceID *string    `json:"paymentReferenceId"`
	Carrier            *string    `json:"carrier"`
	ShippingAddressID  *string    `json:"shippingAddressId"`
	BillingAddressID   *string    `json:"billingAddressId"`
	TotalAmount        string     `json:"totalAmount"`
	Version            int        `json:"version"`
	Items              []LineItem `json:"items"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type AvailableTransition struct {
	TargetStatus  string `json:"targetStatus"`
	CanTransition bool   `json:"canTransition"`
	Reason        string `json:"reason,omitempty"`
}

type AvailableTransitions struct {
	OrderID       string                `json:"orderId"`
	CurrentStatus string                `json:"currentStatus"`
	Transitions   []AvailableTransition `json:"transitions"`
}

type ShippingLabel struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"trackingNumber"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type AuditEntry struct {
	ID         string         `json:"id"`
	ActorType  string         `json:"actorType"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Before     map[string]any `json:"before"`
	After      map[string]any `json:"after"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func orderFromDomain(o *order.Order) Order {
	items := make([]LineItem, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, LineItem{
			SKU:       item.SKU(),
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().String(),
		})
	}

	resp := Order{
		ID:                 o.ID().String(),
		Status:             o.Status().String(),
		StatusDisplay:      o.Status().DisplayName(),
		StatusColor:        o.Status().DisplayColor(),
		ClientID:           o.ClientID(),
		PaymentReferenceID: o.PaymentReferenceID(),
		Carrier:            o.Carrier(),
		TotalAmount:        o.TotalAmount().String(),
		Version:            o.Version(),
		Items:              items,
		CreatedAt:          o.CreatedAt(),
		UpdatedAt:          o.UpdatedAt(),
	}
	if id := o.ShippingAddressID(); id != nil {
		s := id.String()
		resp.ShippingAddressID = &s
	}
	if id := o.BillingAddressID(); id != nil {
		s := id.String()
		resp.BillingAddressID = &s
	}
	return resp
}

func orderFromQuery(q queries.GetOrderQueryResponse) Order {
	items := make([]LineItem, 0, len(q.Items))
	for _, item := range q.Items {
		items = append(items, LineItem{
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		})
	}

	resp := Order{
		ID:                 q.ID.String(),
		Status:             q.Status.String(),
		StatusDisplay:      q.Status.DisplayName(),
		StatusColor:        q.Status.DisplayColor(),
		ClientID:           q.ClientID,
		PaymentReferenceID: q.PaymentReferenceID,
		Carrier:            q.Carrier,
		TotalAmount:        q.TotalAmount.String(),
		Version:            q.Version,
		Items:              items,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
	if q.ShippingAddressID != nil {
		s := q.ShippingAddressID.String()
		resp.ShippingAddressID = &s
	}
	if q.BillingAddressID != nil {
		s := q.BillingAddressID.String()
		resp.BillingAddressID = &s
	}
	return resp
}

func labelFromDomain(l *shipping.Label) ShippingLabel {
	return ShippingLabel{
		ID:             l.ID().String(),
		OrderID:        l.OrderID().String(),
		Carrier:        l.Carrier(),
		TrackingNumber: l.TrackingNumber(),
		Status:         l.Status().String(),
		CreatedAt:      l.CreatedAt(),
	}
}

func auditEntriesFromQuery(entries []queries.AuditEntryResponse) []AuditEntry {
	resp := make([]AuditEntry, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, AuditEntry{
			ID:         e.ID,
			ActorType:  string(e.Actor.Type),
			ActorID:    e.Actor.ID,
			Action:     string(e.Action),
			EntityType: string(e.EntityType),
			EntityID:   e.EntityID,
			Before:     e.Before,
			After:      e.After,
			CreatedAt:  e.CreatedAt,
		})
	}
	return resp
}
