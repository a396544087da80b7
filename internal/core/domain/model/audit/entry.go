package audit

import (
	"errors"
	"strings"
	"time"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

// Action tags what kind of mutation an entry documents.
type Action string

const (
	ActionStatusChange        Action = "status_change"
	ActionOrderCreated        Action = "order_created"
	ActionPaymentReferenceSet Action = "payment_reference_set"
	ActionCarrierAssigned     Action = "carrier_assigned"
	ActionLabelRegistered     Action = "label_registered"
)

// EntityType names the kind of entity an entry is about.
type EntityType string

const (
	EntityOrder         EntityType = "order"
	EntityShippingLabel EntityType = "shipping_label"
)

var ErrEntryIsNotConstructed = errors.New("Entry must be created via NewEntry constructor")

// Entry is one immutable audit record.
type Entry struct {
	id         string
	actor      kernel.Actor
	action     Action
	entityType EntityType
	entityID   string
	before     map[string]any
	after      map[string]any
	createdAt  time.Time

	guard guard.ConstructorGuard
}

// NewEntry creates an entry stamped with at. before and after are deep-copied
// so later changes by the caller cannot leak into the trail.
func NewEntry(
	actor kernel.Actor,
	action Action,
	entityType EntityType,
	entityID string,
	before, after map[string]any,
	at time.Time,
) (*Entry, error) {
	return RestoreEntry(NewEntryID(at), actor, action, entityType, entityID, before, after, at)
}

// RestoreEntry rebuilds a persisted entry.
func RestoreEntry(
	id string,
	actor kernel.Actor,
	action Action,
	entityType EntityType,
	entityID string,
	before, after map[string]any,
	createdAt time.Time,
) (*Entry, error) {
	var validationErrs []error
	if _, err := ParseEntryID(id); err != nil {
		validationErrs = append(validationErrs, errs.NewValueIsInvalidErrorWithCause("audit entry id", err))
	}
	if !actor.IsValid() {
		validationErrs = append(validationErrs, errs.NewValueIsInvalidError("actor"))
	}
	if strings.TrimSpace(string(action)) == "" {
		validationErrs = append(validationErrs, errs.NewValueIsRequiredError("action"))
	}
	if strings.TrimSpace(string(entityType)) == "" {
		validationErrs = append(validationErrs, errs.NewValueIsRequiredError("entity type"))
	}
	if strings.TrimSpace(entityID) == "" {
		validationErrs = append(validationErrs, errs.NewValueIsRequiredError("entity id"))
	}
	if err := errors.Join(validationErrs...); err != nil {
		return nil, err
	}

	return &Entry{
		id:         id,
		actor:      actor,
		action:     action,
		entityType: entityType,
		entityID:   entityID,
		before:     cloneMap(before),
		after:      cloneMap(after),
		createdAt:  createdAt.UTC(),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (e *Entry) Validate() error {
	if e == nil {
		return ErrEntryIsNotConstructed
	}
	return e.guard.Validate(ErrEntryIsNotConstructed)
}

func (e *Entry) ID() string             { return e.id }
func (e *Entry) Actor() kernel.Actor    { return e.actor }
func (e *Entry) Action() Action         { return e.action }
func (e *Entry) EntityType() EntityType { return e.entityType }
func (e *Entry) EntityID() string       { return e.entityID }
func (e *Entry) CreatedAt() time.Time   { return e.createdAt }

// Before returns a copy of the prior-state snapshot.
func (e *Entry) Before() map[string]any { return cloneMap(e.before) }

// After returns a copy of the resulting-state snapshot.
func (e *Entry) After() map[string]any { return cloneMap(e.after) }

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
