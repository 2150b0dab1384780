package public

import (
	handlershared "github.com/bossshopp/internal/http/handlers/shared"
	"github.com/bossshopp/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// CartQuantityRequest 购物车数量覆盖请求
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	summary, err := h.CartService.List(c.Request.Context(), uid)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch cart failed", err)
		return
	}
	response.Success(c, summary)
}

// AddCartItem 加入购物车（累加）
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := h.CartService.Add(c.Request.Context(), uid, req.ProductID, req.Quantity); err != nil {
		respondServiceError(c, err, "add cart item failed")
		return
	}
	response.Success(c, gin.H{"added": true})
}

// UpdateCartItem 覆盖购物车项数量，数量为 0 时移除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := handlershared.ParseUintParam(c, "product_id")
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CartService.Update(c.Request.Context(), uid, productID, req.Quantity); err != nil {
		respondServiceError(c, err, "update cart item failed")
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteCartItem 移除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := handlershared.ParseUintParam(c, "product_id")
	if !ok {
		return
	}
	if err := h.CartService.Remove(c.Request.Context(), uid, productID); err != nil {
		respondError(c, response.CodeInternal, "remove cart item failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(c.Request.Context(), uid); err != nil {
		respondError(c, response.CodeInternal, "clear cart failed", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
