package public

import (
	"github.com/bossshopp/internal/http/response"
	"github.com/bossshopp/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAddresses 收货地址列表
func (h *Handler) GetAddresses(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addresses, err := h.AddressService.List(c.Request.Context(), uid)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch addresses failed", err)
		return
	}
	response.Success(c, addresses)
}

// CreateAddress 新增收货地址
func (h *Handler) CreateAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req service.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	address, err := h.AddressService.Add(c.Request.Context(), uid, req)
	if err != nil {
		respondServiceError(c, err, "create address failed")
		return
	}
	response.Success(c, address)
}
