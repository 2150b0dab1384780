package admin

import (
	"strings"
	"time"

	handlershared "github.com/bossshopp/internal/http/handlers/shared"
	"github.com/bossshopp/internal/http/response"
	"github.com/bossshopp/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 订单状态更新请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePaymentStatusRequest 支付状态更新请求
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// ListOrders 订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := handlershared.ReadPagination(c)
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
		UserID:   uint(handlershared.QueryInt(c, "user_id", 0)),
	}
	var ok bool
	if filter.CreatedFrom, ok = queryTime(c, "created_from"); !ok {
		respondError(c, response.CodeBadRequest, "invalid created_from", nil)
		return
	}
	if filter.CreatedTo, ok = queryTime(c, "created_to"); !ok {
		respondError(c, response.CodeBadRequest, "invalid created_to", nil)
		return
	}
	orders, total, err := h.OrderService.ListAdmin(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch orders failed", err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Get(c.Request.Context(), id, 0)
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

// UpdateOrderStatus 更新订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	order, err := h.OrderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err, "update order status failed")
		return
	}
	response.Success(c, order)
}

// UpdateOrderPaymentStatus 更新支付状态
func (h *Handler) UpdateOrderPaymentStatus(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	order, err := h.OrderService.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus)
	if err != nil {
		respondServiceError(c, err, "update payment status failed")
		return
	}
	response.Success(c, order)
}

// queryTime 支持 RFC3339 与 YYYY-MM-DD，空值返回 nil
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, false
	}
	return &t, true
}
