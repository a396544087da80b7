package http

import (
	"log/slog"
	"net/http"
	"strings"

	"orderhub/internal/core/application/usecases/commands"
	"orderhub/internal/core/application/usecases/queries"
	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/kernel"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// Server handles the order endpoints under /api/v1.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler           commands.CreateOrderCommandHandler
	transitionOrderHandler       commands.TransitionOrderCommandHandler
	setPaymentReferenceHandler   commands.SetPaymentReferenceCommandHandler
	assignCarrierHandler         commands.AssignCarrierCommandHandler
	registerShippingLabelHandler commands.RegisterShippingLabelCommandHandler

	// Query handlers
	getOrderHandler                queries.GetOrderQueryHandler
	getAvailableTransitionsHandler queries.GetAvailableTransitionsQueryHandler
	getAuditTrailHandler           queries.GetAuditTrailQueryHandler

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	transitionOrderHandler commands.TransitionOrderCommandHandler,
	setPaymentReferenceHandler commands.SetPaymentReferenceCommandHandler,
	assignCarrierHandler commands.AssignCarrierCommandHandler,
	registerShippingLabelHandler commands.RegisterShippingLabelCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getAvailableTransitionsHandler queries.GetAvailableTransitionsQueryHandler,
	getAuditTrailHandler queries.GetAuditTrailQueryHandler,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:             createOrderHandler,
		transitionOrderHandler:         transitionOrderHandler,
		setPaymentReferenceHandler:     setPaymentReferenceHandler,
		assignCarrierHandler:           assignCarrierHandler,
		registerShippingLabelHandler:   registerShippingLabelHandler,
		getOrderHandler:                getOrderHandler,
		getAvailableTransitionsHandler: getAvailableTransitionsHandler,
		getAuditTrailHandler:           getAuditTrailHandler,
		logger:                         logger.With("component", "http"),
	}
}

// RegisterRoutes mounts the order endpoints on g.
func (s *Server) RegisterRoutes(g *echo.Group) {
	g.POST("/orders", s.CreateOrder)
	g.GET("/orders/:orderId", s.GetOrder)
	g.POST("/orders/:orderId/transitions", s.TransitionOrder)
	g.GET("/orders/:orderId/transitions", s.GetAvailableTransitions)
	g.PUT("/orders/:orderId/payment-reference", s.SetPaymentReference)
	g.PUT("/orders/:orderId/carrier", s.AssignCarrier)
	g.POST("/orders/:orderId/labels", s.RegisterShippingLabel)
	g.GET("/orders/:orderId/audit", s.GetOrderAuditTrail)
}

// CreateOrder handles POST /api/v1/orders - creates a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req NewOrder
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID := kernel.NewUUID()
	if strings.TrimSpace(req.ID) != "" {
		parsed, err := kernel.UUIDFromString(req.ID)
		if err != nil {
			return badRequest(ctx, "Invalid order id: "+err.Error())
		}
		orderID = parsed
	}

	shippingAddressID, err := optionalUUID(req.ShippingAddressID)
	if err != nil {
		return badRequest(ctx, "Invalid shipping address id: "+err.Error())
	}
	billingAddressID, err := optionalUUID(req.BillingAddressID)
	if err != nil {
		return badRequest(ctx, "Invalid billing address id: "+err.Error())
	}

	items := make([]commands.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, commands.LineItemInput{
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	cmd, err := commands.NewCreateOrderCommand(orderID, req.ClientID, items,
		shippingAddressID, billingAddressID, req.TotalAmount, actorOf(ctx))
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, orderFromDomain(created))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	found, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err, "Failed to retrieve order")
	}

	return ctx.JSON(http.StatusOK, orderFromQuery(found))
}

// TransitionOrder handles POST /api/v1/orders/{orderId}/transitions.
func (s *Server) TransitionOrder(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req TransitionRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, err := order.ParseStatus(req.TargetStatus)
	if err != nil {
		return badRequest(ctx, "Invalid target status: "+err.Error())
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, target, req.Reason, req.Metadata, actorOf(ctx))
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	updated, err := s.transitionOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err, "Failed to transition order")
	}

	return ctx.JSON(http.StatusOK, orderFromDomain(updated))
}

// GetAvailableTransitions handles GET /api/v1/orders/{orderId}/transitions.
func (s *Server) GetAvailableTransitions(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetAvailableTransitionsQuery(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	result, err := s.getAvailableTransitionsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err, "Failed to evaluate transitions")
	}

	transitions := make([]AvailableTransition, 0, len(result.Transitions))
	for _, t := range result.Transitions {
		transitions = append(transitions, AvailableTransition{
			TargetStatus:  t.Target.String(),
			CanTransition: t.CanTransition,
			Reason:        t.Reason,
		})
	}

	return ctx.JSON(http.StatusOK, AvailableTransitions{
		OrderID:       result.OrderID.String(),
		CurrentStatus: result.CurrentStatus.String(),
		Transitions:   transitions,
	})
}

// SetPaymentReference handles PUT /api/v1/orders/{orderId}/payment-reference.
func (s *Server) SetPaymentReference(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req PaymentReferenceRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewSetPaymentReferenceCommand(orderID, req.PaymentReferenceID, actorOf(ctx))
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	updated, err := s.setPaymentReferenceHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err, "Failed to set payment reference")
	}

	return ctx.JSON(http.StatusOK, orderFromDomain(updated))
}

// AssignCarrier handles PUT /api/v1/orders/{orderId}/carrier.
func (s *Server) AssignCarrier(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req CarrierRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewAssignCarrierCommand(orderID, req.Carrier, actorOf(ctx))
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	updated, err := s.assignCarrierHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err, "Failed to assign carrier")
	}

	return ctx.JSON(http.StatusOK, orderFromDomain(updated))
}

// RegisterShippingLabel handles POST /api/v1/orders/{orderId}/labels.
func (s *Server) RegisterShippingLabel(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req ShippingLabelRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRegisterShippingLabelCommand(kernel.NewUUID(), orderID,
		req.Carrier, req.TrackingNumber, actorOf(ctx))
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	label, err := s.registerShippingLabelHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err, "Failed to register shipping label")
	}

	return ctx.JSON(http.StatusCreated, labelFromDomain(label))
}

// GetOrderAuditTrail handles GET /api/v1/orders/{orderId}/audit.
func (s *Server) GetOrderAuditTrail(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetAuditTrailQuery(audit.EntityOrder, orderID.String())
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	entries, err := s.getAuditTrailHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err, "Failed to retrieve audit trail")
	}

	return ctx.JSON(http.StatusOK, auditEntriesFromQuery(entries))
}

// actorOf attributes the request to the authenticated identity.
func actorOf(ctx echo.Context) kernel.Actor {
	var caller kernel.Caller
	if ident := CallerIdentity(ctx); ident != nil {
		caller.IdentityKeyID = ident.KeyID()
	}
	return kernel.ResolveActor("", "", caller)
}

func bindOrderID(ctx echo.Context) (kernel.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("orderId", err)
	}
	return kernel.UUIDFromString(raw)
}

func optionalUUID(raw string) (*kernel.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
