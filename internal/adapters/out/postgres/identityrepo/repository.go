package identityrepo

import (
	"context"
	"errors"
	"strings"

	"orderhub/internal/core/domain/model/identity"
	"orderhub/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormIdentityRepository implements ports.IdentityRepository using GORM.
type GormIdentityRepository struct {
	db *gorm.DB
}

func NewGormIdentityRepository(db *gorm.DB) *GormIdentityRepository {
	return &GormIdentityRepository{db: db}
}

// FindActiveByKeyID returns errs.ObjectNotFoundError for unknown and
// deactivated keys alike, so callers cannot tell them apart.
func (r *GormIdentityRepository) FindActiveByKeyID(ctx context.Context, keyID string) (*identity.Identity, error) {
	return r.find(ctx, "key_id = ? AND active = ?", strings.TrimSpace(keyID), true)
}

func (r *GormIdentityRepository) GetByKeyID(ctx context.Context, keyID string) (*identity.Identity, error) {
	return r.find(ctx, "key_id = ?", strings.TrimSpace(keyID))
}

func (r *GormIdentityRepository) Add(ctx context.Context, aggregate *identity.Identity) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewInfrastructureError("insert identity", err)
	}
	return nil
}

func (r *GormIdentityRepository) Update(ctx context.Context, aggregate *identity.Identity) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&IdentityDTO{}).
		Where("id = ?", aggregate.ID().Bytes()).
		Update("active", aggregate.IsActive())
	if result.Error != nil {
		return errs.NewInfrastructureError("update identity", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("identity", aggregate.KeyID())
	}
	return nil
}

func (r *GormIdentityRepository) find(ctx context.Context, query string, args ...any) (*identity.Identity, error) {
	var dto IdentityDTO
	if err := r.db.WithContext(ctx).Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("identity", args[0])
		}
		return nil, errs.NewInfrastructureError("select identity", err)
	}
	return toDomain(dto)
}
