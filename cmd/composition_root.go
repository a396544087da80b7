package cmd

import (
	"log/slog"

	"orderhub/internal/adapters/out/postgres"
	"orderhub/internal/adapters/out/postgres/auditrepo"
	"orderhub/internal/adapters/out/postgres/identityrepo"
	"orderhub/internal/core/application/usecases/commands"
	"orderhub/internal/core/application/usecases/queries"
	"orderhub/internal/core/domain/services"
	"orderhub/internal/core/ports"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	logger     *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
	}
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) identityUoWFactory() commands.IdentityUoWFactory {
	return FuncIdentityUoWFactory(func() commands.IdentityUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler(
	dispatcher ports.TransitionDispatcher,
	observer commands.TransitionObserver,
) commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.orderUoWFactory(), dispatcher, c.logger,
		commands.WithTransitionObserver(observer),
		commands.WithTransitionMaxAttempts(c.config.TransitionMaxAttempts),
	)
}

func (c *CompositionRoot) CreateRedeliverTransitionTasksCommandHandler(
	dispatcher ports.TransitionDispatcher,
) commands.RedeliverTransitionTasksCommandHandler {
	return commands.NewRedeliverTransitionTasksCommandHandler(c.orderUoWFactory(), dispatcher, c.logger)
}

func (c *CompositionRoot) CreateSetPaymentReferenceCommandHandler() commands.SetPaymentReferenceCommandHandler {
	return commands.NewSetPaymentReferenceCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateAssignCarrierCommandHandler() commands.AssignCarrierCommandHandler {
	return commands.NewAssignCarrierCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateRegisterShippingLabelCommandHandler() commands.RegisterShippingLabelCommandHandler {
	return commands.NewRegisterShippingLabelCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateProvisionIdentityCommandHandler() commands.ProvisionIdentityCommandHandler {
	return commands.NewProvisionIdentityCommandHandler(c.identityUoWFactory())
}

func (c *CompositionRoot) CreateDeactivateIdentityCommandHandler() commands.DeactivateIdentityCommandHandler {
	return commands.NewDeactivateIdentityCommandHandler(c.identityUoWFactory())
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableTransitionsQueryHandler() queries.GetAvailableTransitionsQueryHandler {
	return queries.NewGetAvailableTransitionsQueryHandler(&c.uowFactory)
}

func (c *CompositionRoot) CreateGetAuditTrailQueryHandler() queries.GetAuditTrailQueryHandler {
	return queries.NewGetAuditTrailQueryHandler(auditrepo.NewGormAuditLogRepository(c.gormDB))
}

func (c *CompositionRoot) CreateGetActorActivityQueryHandler() queries.GetActorActivityQueryHandler {
	return queries.NewGetActorActivityQueryHandler(auditrepo.NewGormAuditLogRepository(c.gormDB))
}

func (c *CompositionRoot) CreateRequestAuthenticator() *services.RequestAuthenticator {
	return services.NewRequestAuthenticator(
		identityrepo.NewGormIdentityRepository(c.gormDB),
		services.WithMaxClockSkew(c.config.AuthMaxClockSkew),
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncIdentityUoWFactory func() commands.IdentityUoW

func (f FuncIdentityUoWFactory) Create() commands.IdentityUoW {
	return f()
}
