// Package http exposes the order lifecycle over a REST API.
// One endpoint per lifecycle action keeps the transition table visible in
// the route list; every handler delegates to a command or query handler.
package http

import (
	"net/http"
	"strings"

	"exchange/internal/core/application/usecases/commands"
	"exchange/internal/core/application/usecases/queries"
	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/core/domain/model/order"
	"exchange/internal/core/ports"
	"exchange/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler commands.CreateOrderCommandHandler
	transitionHandler  commands.TransitionOrderCommandHandler

	// Query handlers
	getOrderHandler         queries.GetOrderQueryHandler
	getOrdersByStateHandler queries.GetOrdersByStateQueryHandler

	publisher ports.OrderEventPublisher
}

// NewServer creates a new HTTP server with the required command and query
// handlers. The publisher receives a state-changed event after each committed
// transition.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	transitionHandler commands.TransitionOrderCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getOrdersByStateHandler queries.GetOrdersByStateQueryHandler,
	publisher ports.OrderEventPublisher,
) *Server {
	return &Server{
		createOrderHandler:      createOrderHandler,
		transitionHandler:       transitionHandler,
		getOrderHandler:         getOrderHandler,
		getOrdersByStateHandler: getOrdersByStateHandler,
		publisher:               publisher,
	}
}

// RegisterRoutes mounts all order endpoints under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.GetOrders)
	api.GET("/orders/:orderId", s.GetOrder)

	api.POST("/orders/:orderId/abandon", s.AbandonOrder)
	api.POST("/orders/:orderId/submit", s.SubmitOrder)
	api.POST("/orders/:orderId/revert", s.RevertOrder)
	api.POST("/orders/:orderId/approve", s.ApproveOrder)
	api.POST("/orders/:orderId/reject", s.RejectOrder)
	api.POST("/orders/:orderId/seller_lapse", s.SellerLapseOrder)
	api.POST("/orders/:orderId/buyer_lapse", s.BuyerLapseOrder)
	api.POST("/orders/:orderId/cancel", s.CancelOrder)
	api.POST("/orders/:orderId/fulfill", s.FulfillOrder)
	api.POST("/orders/:orderId/refund", s.RefundOrder)
}

func parseOrderID(ctx echo.Context) (kernel.UUID, error) {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return kernel.UUID{}, errs.NewValidationErrorWithCause(errs.CodeMissingRequiredParam, err).
			With("param", "orderId")
	}
	return orderID, nil
}

// CreateOrder handles POST /api/v1/orders - opens a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var request CreateOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Category: "validation",
			Code:     "invalid_order",
			Message:  "invalid request body",
		})
	}

	mode, err := order.ModeFromString(request.Mode)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), mode)
	if err != nil {
		return writeError(ctx, err)
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, orderFromAggregate(created))
}

// GetOrder handles GET /api/v1/orders/:orderId - one order with history.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	view, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromQuery(view))
}

// GetOrders handles GET /api/v1/orders?states=submitted,approved.
func (s *Server) GetOrders(ctx echo.Context) error {
	var states []string
	if raw := ctx.QueryParam("states"); raw != "" {
		states = strings.Split(raw, ",")
	}

	query, err := queries.NewGetOrdersByStateQuery(states)
	if err != nil {
		return writeError(ctx, err)
	}

	views, err := s.getOrdersByStateHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]OrderResponse, 0, len(views))
	for _, view := range views {
		response = append(response, orderFromQuery(view))
	}

	return ctx.JSON(http.StatusOK, response)
}

// AbandonOrder handles POST /api/v1/orders/:orderId/abandon.
func (s *Server) AbandonOrder(ctx echo.Context) error {
	return s.transition(ctx, commands.NewAbandonOrderCommand)
}

// SubmitOrder handles POST /api/v1/orders/:orderId/submit.
func (s *Server) SubmitOrder(ctx echo.Context) error {
	return s.transition(ctx, commands.NewSubmitOrderCommand)
}

// RevertOrder handles POST /api/v1/orders/:orderId/revert.
func (s *Server) RevertOrder(ctx echo.Context) error {
	return s.transition(ctx, commands.NewRevertOrderCommand)
}

// ApproveOrder handles POST /api/v1/orders/:orderId/approve.
func (s *Server) ApproveOrder(ctx echo.Context) error {
	return s.transition(ctx, commands.NewApproveOrderCommand)
}

// RejectOrder handles POST /api/v1/orders/:orderId/reject.
// The body may carry a cancellation reason; without one the reject default
// is recorded.
func (s *Server) RejectOrder(ctx echo.Context) error {
	return s.transitionWithReason(ctx, commands.NewRejectOrderCommand)
}

// SellerLapseOrder handles POST /api/v1/orders/:orderId/seller_lapse.
func (s *Server) SellerLapseOrder(ctx echo.Context) error {
	return s.transition(ctx, commands.NewSellerLapseOrderCommand)
}

// BuyerLapseOrder handles POST /api/v1/orders/:orderId/buyer_lapse.
func (s *Server) BuyerLapseOrder(ctx echo.Context) error {
	return s.transition(ctx, commands.NewBuyerLapseOrderCommand)
}

// CancelOrder handles POST /api/v1/orders/:orderId/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	return s.transitionWithReason(ctx, commands.NewCancelOrderCommand)
}

// FulfillOrder handles POST /api/v1/orders/:orderId/fulfill.
func (s *Server) FulfillOrder(ctx echo.Context) error {
	return s.transition(ctx, commands.NewFulfillOrderCommand)
}

// RefundOrder handles POST /api/v1/orders/:orderId/refund.
func (s *Server) RefundOrder(ctx echo.Context) error {
	return s.transition(ctx, commands.NewRefundOrderCommand)
}

func (s *Server) transition(
	ctx echo.Context,
	construct func(kernel.UUID) (commands.TransitionOrderCommand, error),
) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := construct(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	return s.executeTransition(ctx, cmd)
}

func (s *Server) transitionWithReason(
	ctx echo.Context,
	construct func(kernel.UUID, order.Reason) (commands.TransitionOrderCommand, error),
) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	var request TransitionRequest
	if bindErr := ctx.Bind(&request); bindErr != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Category: "validation",
			Code:     "invalid_state",
			Message:  "invalid request body",
		})
	}

	reason, err := order.ReasonFromString(request.Reason)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := construct(orderID, reason)
	if err != nil {
		return writeError(ctx, err)
	}

	return s.executeTransition(ctx, cmd)
}

// executeTransition runs the command; a committed transition whose follow-up
// publish failed is still a success to the API caller.
func (s *Server) executeTransition(ctx echo.Context, cmd commands.TransitionOrderCommand) error {
	transitioned, err := s.transitionHandler.Handle(
		ctx.Request().Context(), cmd, commands.StateChangedFollowUp(s.publisher))
	if err != nil && transitioned == nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromAggregate(transitioned))
}
