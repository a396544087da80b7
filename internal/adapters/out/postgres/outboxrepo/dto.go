// Package outboxrepo is the transition_outbox table: one row per committed
// status change, written with it and marked once the side-effect dispatcher
// accepted the task.
package outboxrepo

import (
	"time"

	"orderhub/internal/core/ports"

	"gorm.io/datatypes"
)

type TransitionOutboxDTO struct {
	TaskID       string                                   `gorm:"type:char(26);primaryKey"`
	OrderID      string                                   `gorm:"size:64;not null;index"`
	Payload      datatypes.JSONType[ports.TransitionTask] `gorm:"not null"`
	CreatedAt    time.Time                                `gorm:"not null;index:idx_outbox_undispatched,priority:2"`
	DispatchedAt *time.Time                               `gorm:"index:idx_outbox_undispatched,priority:1"`
}

func (TransitionOutboxDTO) TableName() string {
	return "transition_outbox"
}

func fromTask(task ports.TransitionTask) TransitionOutboxDTO {
	return TransitionOutboxDTO{
		TaskID:    task.TaskID,
		OrderID:   task.OrderID,
		Payload:   datatypes.NewJSONType(task),
		CreatedAt: task.OccurredAt.UTC(),
	}
}
