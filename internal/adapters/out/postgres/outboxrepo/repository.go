package outboxrepo

import (
	"context"
	"time"

	"orderhub/internal/core/ports"
	"orderhub/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormTransitionOutbox implements ports.TransitionOutbox.
type GormTransitionOutbox struct {
	db *gorm.DB
}

func NewGormTransitionOutbox(db *gorm.DB) *GormTransitionOutbox {
	return &GormTransitionOutbox{db: db}
}

func (r *GormTransitionOutbox) Enqueue(ctx context.Context, task ports.TransitionTask) error {
	if task.TaskID == "" {
		return errs.NewValueIsRequiredError("task id")
	}

	dto := fromTask(task)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewInfrastructureError("insert outbox task", err)
	}
	return nil
}

func (r *GormTransitionOutbox) MarkDispatched(ctx context.Context, taskID string, at time.Time) error {
	if taskID == "" {
		return errs.NewValueIsRequiredError("task id")
	}

	at = at.UTC()
	err := r.db.WithContext(ctx).
		Model(&TransitionOutboxDTO{}).
		Where("task_id = ? AND dispatched_at IS NULL", taskID).
		Update("dispatched_at", &at).Error
	if err != nil {
		return errs.NewInfrastructureError("mark outbox task", err)
	}
	return nil
}

func (r *GormTransitionOutbox) ListUndispatched(
	ctx context.Context,
	createdBefore time.Time,
	limit int,
) ([]ports.TransitionTask, error) {
	var dtos []TransitionOutboxDTO
	query := r.db.WithContext(ctx).
		Where("dispatched_at IS NULL AND created_at <= ?", createdBefore.UTC()).
		Order("created_at, task_id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&dtos).Error; err != nil {
		return nil, errs.NewInfrastructureError("select outbox tasks", err)
	}

	tasks := make([]ports.TransitionTask, 0, len(dtos))
	for _, dto := range dtos {
		tasks = append(tasks, dto.Payload.Data())
	}
	return tasks, nil
}
