package queries

import (
	"errors"
	"strings"
	"time"

	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"
	"orderhub/internal/pkg/guard"
)

var ErrGetAuditTrailQueryIsNotConstructed = errors.New(
	"GetAuditTrailQuery must be created via NewGetAuditTrailQuery constructor",
)

// GetAuditTrailQuery returns the history of one entity, oldest first.
//
// Example:
//
//	query, _ := NewGetAuditTrailQuery(audit.EntityOrder, orderID.String())
//	entries, err := NewGetAuditTrailQueryHandler(auditLog).Handle(ctx, query)
type GetAuditTrailQuery struct {
	entityType audit.EntityType
	entityID   string

	guard guard.ConstructorGuard
}

func NewGetAuditTrailQuery(entityType audit.EntityType, entityID string) (GetAuditTrailQuery, error) {
	entityID = strings.TrimSpace(entityID)

	var validationErrs []error
	if strings.TrimSpace(string(entityType)) == "" {
		validationErrs = append(validationErrs, errs.NewValueIsRequiredError("entity type"))
	}
	if entityID == "" {
		validationErrs = append(validationErrs, errs.NewValueIsRequiredError("entity id"))
	}
	if err := errors.Join(validationErrs...); err != nil {
		return GetAuditTrailQuery{}, err
	}

	return GetAuditTrailQuery{
		entityType: entityType,
		entityID:   entityID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetAuditTrailQuery) Validate() error {
	return q.guard.Validate(ErrGetAuditTrailQueryIsNotConstructed)
}

func (q GetAuditTrailQuery) EntityType() audit.EntityType { return q.entityType }
func (q GetAuditTrailQuery) EntityID() string             { return q.entityID }

// AuditEntryResponse is one stored audit entry. Before and After are the JSON
// snapshots decoded into plain values.
type AuditEntryResponse struct {
	ID         string
	Actor      kernel.Actor
	Action     audit.Action
	EntityType audit.EntityType
	EntityID   string
	Before     map[string]any
	After      map[string]any
	CreatedAt  time.Time
}
