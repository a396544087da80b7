package labelrepo

import (
	"context"

	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/shipping"
	"orderhub/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormShippingLabelRepository implements ports.ShippingLabelRepository.
type GormShippingLabelRepository struct {
	db *gorm.DB
}

func NewGormShippingLabelRepository(db *gorm.DB) *GormShippingLabelRepository {
	return &GormShippingLabelRepository{db: db}
}

func (r *GormShippingLabelRepository) Add(ctx context.Context, label *shipping.Label) error {
	if err := label.Validate(); err != nil {
		return err
	}

	dto := fromDomain(label)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewInfrastructureError("insert shipping label", err)
	}
	return nil
}

func (r *GormShippingLabelRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*shipping.Label, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ShippingLabelDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("created_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, errs.NewInfrastructureError("select shipping labels", err)
	}

	labels := make([]*shipping.Label, 0, len(dtos))
	for _, dto := range dtos {
		label, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		labels = append(labels, label)
	}
	return labels, nil
}

func (r *GormShippingLabelRepository) HasGeneratedLabel(ctx context.Context, orderID kernel.UUID) (bool, error) {
	if err := orderID.Validate(); err != nil {
		return false, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&ShippingLabelDTO{}).
		Where("order_id = ? AND status = ?", orderID.Bytes(), shipping.LabelGenerated.String()).
		Count(&count).Error
	if err != nil {
		return false, errs.NewInfrastructureError("count shipping labels", err)
	}
	return count > 0, nil
}
