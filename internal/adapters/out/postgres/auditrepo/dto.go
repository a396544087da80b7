// Package auditrepo is the append-only audit_log_entries table. Before and
// after snapshots are stored as JSON.
package auditrepo

import (
	"encoding/json"
	"time"

	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/kernel"

	"gorm.io/datatypes"
)

type AuditLogEntryDTO struct {
	ID         string            `gorm:"type:char(26);primaryKey"`
	ActorType  string            `gorm:"size:16;not null;index:idx_audit_actor,priority:1"`
	ActorID    string            `gorm:"size:255;not null;index:idx_audit_actor,priority:2"`
	Action     string            `gorm:"size:64;not null"`
	EntityType string            `gorm:"size:64;not null;index:idx_audit_entity,priority:1"`
	EntityID   string            `gorm:"size:64;not null;index:idx_audit_entity,priority:2"`
	Before     datatypes.JSONMap `gorm:"column:before_state;not null"`
	After      datatypes.JSONMap `gorm:"column:after_state;not null"`
	CreatedAt  time.Time         `gorm:"not null;index"`
}

func (AuditLogEntryDTO) TableName() string {
	return "audit_log_entries"
}

func fromDomain(entry *audit.Entry) AuditLogEntryDTO {
	actor := entry.Actor()
	return AuditLogEntryDTO{
		ID:         entry.ID(),
		ActorType:  string(actor.Type),
		ActorID:    actor.ID,
		Action:     string(entry.Action()),
		EntityType: string(entry.EntityType()),
		EntityID:   entry.EntityID(),
		Before:     datatypes.JSONMap(entry.Before()),
		After:      datatypes.JSONMap(entry.After()),
		CreatedAt:  entry.CreatedAt(),
	}
}

func toDomain(dto AuditLogEntryDTO) (*audit.Entry, error) {
	return audit.RestoreEntry(
		dto.ID,
		kernel.Actor{Type: kernel.ActorType(dto.ActorType), ID: dto.ActorID},
		audit.Action(dto.Action),
		audit.EntityType(dto.EntityType),
		dto.EntityID,
		normalizeMap(dto.Before),
		normalizeMap(dto.After),
		dto.CreatedAt,
	)
}

// JSONMap decodes numbers as json.Number. Snapshots are handed back with
// int64 for integral values and float64 otherwise.
func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		return normalizeMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
