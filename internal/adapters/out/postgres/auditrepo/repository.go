package auditrepo

import (
	"context"

	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormAuditLogRepository implements ports.AuditLogRepository. It only ever
// inserts and selects.
type GormAuditLogRepository struct {
	db *gorm.DB
}

func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

func (r *GormAuditLogRepository) Append(ctx context.Context, entry *audit.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entry)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewInfrastructureError("insert audit entry", err)
	}
	return nil
}

func (r *GormAuditLogRepository) ListByEntity(
	ctx context.Context,
	entityType audit.EntityType,
	entityID string,
) ([]*audit.Entry, error) {
	return r.list(ctx, "entity_type = ? AND entity_id = ?", string(entityType), entityID)
}

func (r *GormAuditLogRepository) ListByActor(ctx context.Context, actor kernel.Actor) ([]*audit.Entry, error) {
	return r.list(ctx, "actor_type = ? AND actor_id = ?", string(actor.Type), actor.ID)
}

// Entry ids are ULIDs, so ordering by id breaks created_at ties in
// insertion order.
func (r *GormAuditLogRepository) list(ctx context.Context, query string, args ...any) ([]*audit.Entry, error) {
	var dtos []AuditLogEntryDTO
	if err := r.db.WithContext(ctx).Where(query, args...).Order("created_at, id").Find(&dtos).Error; err != nil {
		return nil, errs.NewInfrastructureError("select audit entries", err)
	}

	entries := make([]*audit.Entry, 0, len(dtos))
	for _, dto := range dtos {
		entry, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
