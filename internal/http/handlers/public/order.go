package public

import (
	"strings"

	"github.com/bossshopp/internal/constants"
	handlershared "github.com/bossshopp/internal/http/handlers/shared"
	"github.com/bossshopp/internal/http/response"
	"github.com/bossshopp/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 下单请求，items 为空时使用购物车
type CreateOrderRequest struct {
	Items             []service.OrderLineInput `json:"items"`
	ShippingAddressID *uint                    `json:"shipping_address_id"`
	BillingAddressID  *uint                    `json:"billing_address_id"`
	PaymentMethod     string                   `json:"payment_method"`
	Notes             string                   `json:"notes"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	order, err := h.OrderService.Create(c.Request.Context(), service.CreateOrderInput{
		UserID:            uid,
		Items:             req.Items,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		PaymentMethod:     strings.TrimSpace(req.PaymentMethod),
		Notes:             req.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "create order failed")
		return
	}
	response.Success(c, order)
}

// ListOrders 我的订单
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orders, err := h.OrderService.ListByUser(c.Request.Context(), uid, handlershared.QueryInt(c, "limit", 0))
	if err != nil {
		respondError(c, response.CodeInternal, "fetch orders failed", err)
		return
	}
	response.Success(c, orders)
}

// GetOrder 我的订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Get(c.Request.Context(), orderID, uid)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch order failed", err)
		return
	}
	if order == nil {
		respondError(c, response.CodeNotFound, "order not found", nil)
		return
	}
	response.Success(c, order)
}

// CancelOrder 用户取消待处理订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Get(c.Request.Context(), orderID, uid)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch order failed", err)
		return
	}
	if order == nil {
		respondError(c, response.CodeNotFound, "order not found", nil)
		return
	}
	if order.Status != constants.OrderStatusPending {
		respondError(c, response.CodeConflict, "only pending orders can be cancelled", nil)
		return
	}
	updated, err := h.OrderService.UpdateStatus(c.Request.Context(), orderID, constants.OrderStatusCancelled)
	if err != nil {
		respondServiceError(c, err, "cancel order failed")
		return
	}
	response.Success(c, updated)
}
