package postgres

import (
	"orderhub/internal/adapters/out/postgres/auditrepo"
	"orderhub/internal/adapters/out/postgres/identityrepo"
	"orderhub/internal/adapters/out/postgres/labelrepo"
	"orderhub/internal/adapters/out/postgres/orderrepo"
	"orderhub/internal/adapters/out/postgres/outboxrepo"

	"gorm.io/gorm"
)

// Models lists every table the service owns, in dependency order.
func Models() []any {
	return []any{
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&labelrepo.ShippingLabelDTO{},
		&identityrepo.IdentityDTO{},
		&auditrepo.AuditLogEntryDTO{},
		&outboxrepo.TransitionOutboxDTO{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
