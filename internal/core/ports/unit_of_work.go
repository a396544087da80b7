package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AfterCommitFunc runs once the transaction it was registered on commits.
type AfterCommitFunc func(ctx context.Context)

// UnitOfWork represents a business transaction boundary.
// Client code must explicitly manage transaction lifecycle.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction and then runs the registered
	// after-commit hooks in registration order.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction and discards pending hooks.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// AfterCommit registers fn to run after a successful Commit. Hooks never
	// run if the transaction rolls back.
	AfterCommit(fn AfterCommitFunc)

	OrderRepository() OrderRepository
	IdentityRepository() IdentityRepository
	AuditLogRepository() AuditLogRepository
	ShippingLabelRepository() ShippingLabelRepository
	TransitionOutbox() TransitionOutbox
}
