// Package commands contains business operations that modify system state.
// Every command follows the same pattern: constructor validation, one unit of
// work per attempt, persistence plus an audit entry in the same transaction.
package commands

import (
	"context"

	"orderhub/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// CommitHooks defers work until the transaction has committed.
	CommitHooks interface {
		AfterCommit(fn ports.AfterCommitFunc)
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	AuditRepoFactory interface {
		AuditLogRepository() ports.AuditLogRepository
	}

	LabelRepoFactory interface {
		ShippingLabelRepository() ports.ShippingLabelRepository
	}

	OutboxFactory interface {
		TransitionOutbox() ports.TransitionOutbox
	}

	IdentityRepoFactory interface {
		IdentityRepository() ports.IdentityRepository
	}

	// OrderUoW scopes every repository an order mutation touches: the order
	// itself, its labels, the audit log and the transition outbox.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	//   // ... mutate, update, append audit entry
	//   uow.AfterCommit(func(ctx context.Context) { /* dispatch */ })
	//
	//   err = uow.Commit(ctx)
	OrderUoW interface {
		TxManager
		CommitHooks
		OrderRepoFactory
		AuditRepoFactory
		LabelRepoFactory
		OutboxFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// IdentityUoW manages transactions for credential provisioning.
	IdentityUoW interface {
		TxManager
		IdentityRepoFactory
	}

	// IdentityUoWFactory creates new identity unit of work instances.
	IdentityUoWFactory interface {
		Create() IdentityUoW
	}
)
