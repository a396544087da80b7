// Package postgres provides the GORM-based Unit of Work. A unit of work owns
// one database transaction and hands out repositories bound to it, so an
// order mutation and the audit entry that documents it commit together.
//
// Usage:
//
//	uow := NewGormUnitOfWorkFactory(db).Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	if err := uow.AuditLogRepository().Append(ctx, entry); err != nil {
//	    return err
//	}
//	if err := uow.TransitionOutbox().Enqueue(ctx, task); err != nil {
//	    return err
//	}
//	uow.AfterCommit(func(ctx context.Context) { _ = dispatcher.Dispatch(ctx, task) })
//
//	return uow.Commit(ctx)
//
// After-commit hooks run synchronously in registration order once Commit
// succeeds. Rollback, or a failed Commit, discards them.
//
// Each UnitOfWork instance must be used by a single goroutine.
package postgres

import (
	"context"

	"orderhub/internal/adapters/out/postgres/auditrepo"
	"orderhub/internal/adapters/out/postgres/identityrepo"
	"orderhub/internal/adapters/out/postgres/labelrepo"
	"orderhub/internal/adapters/out/postgres/orderrepo"
	"orderhub/internal/adapters/out/postgres/outboxrepo"
	"orderhub/internal/core/ports"
	"orderhub/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a fresh unit of work with no transaction and no hooks.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates one transaction and the hooks to run after it
// commits.
type GormUnitOfWork struct {
	db          *gorm.DB
	tx          *gorm.DB
	afterCommit []ports.AfterCommitFunc
}

// Begin opens the transaction. Calling it again while one is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return errs.NewInfrastructureError("begin transaction", err)
	}

	return nil
}

// Commit finalizes the transaction and then runs the after-commit hooks.
// Hooks are dropped when the commit itself fails.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil

	hooks := uow.afterCommit
	uow.afterCommit = nil

	if err != nil {
		return err
	}

	for _, hook := range hooks {
		hook(ctx)
	}
	return nil
}

// Rollback discards the transaction and every pending hook. It returns
// gorm.ErrInvalidTransaction when nothing is open, which the deferred
// rollback after a successful commit relies on being harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	uow.afterCommit = nil

	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// AfterCommit registers fn to run once Commit succeeds.
func (uow *GormUnitOfWork) AfterCommit(fn ports.AfterCommitFunc) {
	if fn == nil {
		return
	}
	uow.afterCommit = append(uow.afterCommit, fn)
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn())
}

func (uow *GormUnitOfWork) IdentityRepository() ports.IdentityRepository {
	return identityrepo.NewGormIdentityRepository(uow.conn())
}

func (uow *GormUnitOfWork) AuditLogRepository() ports.AuditLogRepository {
	return auditrepo.NewGormAuditLogRepository(uow.conn())
}

func (uow *GormUnitOfWork) ShippingLabelRepository() ports.ShippingLabelRepository {
	return labelrepo.NewGormShippingLabelRepository(uow.conn())
}

// TransitionOutbox is bound to the transaction while one is open. After
// Commit it writes through the pool, which is how delivery is marked.
func (uow *GormUnitOfWork) TransitionOutbox() ports.TransitionOutbox {
	return outboxrepo.NewGormTransitionOutbox(uow.conn())
}

// conn returns the open transaction, or the pool outside one.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
