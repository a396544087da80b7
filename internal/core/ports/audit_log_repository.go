package ports

import (
	"context"

	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/kernel"
)

// AuditLogRepository is append-only: there is deliberately no update or
// delete. It must be obtained from the same unit of work as the mutation an
// entry documents so both commit or neither does.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *audit.Entry) error

	// ListByEntity returns the trail of one entity, oldest first.
	ListByEntity(ctx context.Context, entityType audit.EntityType, entityID string) ([]*audit.Entry, error)

	// ListByActor returns everything an actor did, oldest first.
	ListByActor(ctx context.Context, actor kernel.Actor) ([]*audit.Entry, error)
}
