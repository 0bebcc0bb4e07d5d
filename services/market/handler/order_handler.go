package handler

import (
	"context"
	"net/http"

	"memorabilia-market/internal/marketerrors"
	model "memorabilia-market/internal/models"
	ordering "memorabilia-market/internal/orderService"
	"memorabilia-market/internal/pricing"
	"memorabilia-market/services/market/helpers"
	"memorabilia-market/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -destination=mock_order_service.go -package=handler memorabilia-market/services/market/handler OrderServiceInterface

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, userID int64, draft ordering.Draft) (model.Order, error)
	GetOrder(ctx context.Context, id int64, actor model.Actor) (model.Order, error)
	ListOrders(ctx context.Context, actor model.Actor) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (model.Order, error)
	QuoteCart(ctx context.Context, cart []model.CartLine) (pricing.Summary, error)
}

type OrderHandler struct {
	service OrderServiceInterface
}

func NewOrderHandler(service OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: service}
}

// CreateOrderHandler handles POST /api/orders
func (h *OrderHandler) CreateOrderHandler(c *gin.Context) {
	actor, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.RespondError(c, "CreateOrderHandler", marketerrors.ErrUnauthorized, nil)
		return
	}

	var req helpers.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateOrderHandler", err)
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), actor.UserID, ordering.Draft{
		Total:            *req.Total,
		PaymentReference: req.PaymentReference,
		Status:           req.Status,
		Items:            req.ToItems(),
	})
	if err != nil {
		helpers.RespondError(c, "CreateOrderHandler", err, map[string]any{"user_id": actor.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, order, "order created successfully")
	helpers.LogSuccess("CreateOrderHandler", "order created successfully", map[string]any{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"items":    len(order.Items),
		"total":    order.Total,
	})
}

// ListOrdersHandler handles GET /api/orders
func (h *OrderHandler) ListOrdersHandler(c *gin.Context) {
	actor, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.RespondError(c, "ListOrdersHandler", marketerrors.ErrUnauthorized, nil)
		return
	}

	orders, err := h.service.ListOrders(c.Request.Context(), actor)
	if err != nil {
		helpers.RespondError(c, "ListOrdersHandler", err, map[string]any{"user_id": actor.UserID})
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	utils.JSONResponse(c, http.StatusOK, orders, "orders retrieved successfully")
}

// GetOrderHandler handles GET /api/orders/:id
func (h *OrderHandler) GetOrderHandler(c *gin.Context) {
	actor, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.RespondError(c, "GetOrderHandler", marketerrors.ErrUnauthorized, nil)
		return
	}
	id, ok := helpers.ParseIDParam(c, "GetOrderHandler", "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), id, actor)
	if err != nil {
		helpers.RespondError(c, "GetOrderHandler", err, map[string]any{"order_id": id, "user_id": actor.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, order, "order retrieved successfully")
}

// UpdateOrderStatusHandler handles PATCH /api/orders/:id/status
func (h *OrderHandler) UpdateOrderStatusHandler(c *gin.Context) {
	id, ok := helpers.ParseIDParam(c, "UpdateOrderStatusHandler", "id")
	if !ok {
		return
	}

	var req helpers.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateOrderStatusHandler", err)
		return
	}

	order, err := h.service.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		helpers.RespondError(c, "UpdateOrderStatusHandler", err, map[string]any{"order_id": id, "status": req.Status})
		return
	}

	utils.JSONResponse(c, http.StatusOK, order, "order status updated successfully")
	helpers.LogSuccess("UpdateOrderStatusHandler", "order status updated", map[string]any{
		"order_id": id,
		"status":   order.Status,
	})
}

// QuoteHandler handles POST /api/orders/quote
func (h *OrderHandler) QuoteHandler(c *gin.Context) {
	var req helpers.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "QuoteHandler", err)
		return
	}

	summary, err := h.service.QuoteCart(c.Request.Context(), req.ToCart())
	if err != nil {
		helpers.RespondError(c, "QuoteHandler", err, map[string]any{"lines": len(req.Items)})
		return
	}

	utils.JSONResponse(c, http.StatusOK, summary, "quote computed successfully")
}
