package queries

import (
	"context"

	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/ports"
)

// GetAuditTrailQueryHandler lists the audit entries of one entity.
type GetAuditTrailQueryHandler struct {
	auditLog ports.AuditLogRepository
}

func NewGetAuditTrailQueryHandler(auditLog ports.AuditLogRepository) GetAuditTrailQueryHandler {
	return GetAuditTrailQueryHandler{auditLog: auditLog}
}

func (h GetAuditTrailQueryHandler) Handle(ctx context.Context, query GetAuditTrailQuery) ([]AuditEntryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	entries, err := h.auditLog.ListByEntity(ctx, query.EntityType(), query.EntityID())
	if err != nil {
		return nil, err
	}
	return auditEntryResponses(entries), nil
}

// GetActorActivityQueryHandler lists the audit entries of one actor.
type GetActorActivityQueryHandler struct {
	auditLog ports.AuditLogRepository
}

func NewGetActorActivityQueryHandler(auditLog ports.AuditLogRepository) GetActorActivityQueryHandler {
	return GetActorActivityQueryHandler{auditLog: auditLog}
}

func (h GetActorActivityQueryHandler) Handle(
	ctx context.Context,
	query GetActorActivityQuery,
) ([]AuditEntryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	entries, err := h.auditLog.ListByActor(ctx, query.Actor())
	if err != nil {
		return nil, err
	}
	return auditEntryResponses(entries), nil
}

func auditEntryResponses(entries []*audit.Entry) []AuditEntryResponse {
	resp := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, AuditEntryResponse{
			ID:         entry.ID(),
			Actor:      entry.Actor(),
			Action:     entry.Action(),
			EntityType: entry.EntityType(),
			EntityID:   entry.EntityID(),
			Before:     entry.Before(),
			After:      entry.After(),
			CreatedAt:  entry.CreatedAt().UTC(),
		})
	}
	return resp
}
