package public

import (
	handlershared "github.com/bossshopp/internal/http/handlers/shared"
	"github.com/bossshopp/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetFavorites 收藏列表
func (h *Handler) GetFavorites(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	products, err := h.FavoriteService.List(c.Request.Context(), uid)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch favorites failed", err)
		return
	}
	response.Success(c, products)
}

// AddFavorite 收藏商品
func (h *Handler) AddFavorite(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := handlershared.ParseUintParam(c, "product_id")
	if !ok {
		return
	}
	if err := h.FavoriteService.Add(c.Request.Context(), uid, productID); err != nil {
		respondServiceError(c, err, "add favorite failed")
		return
	}
	response.Success(c, gin.H{"favorited": true})
}

// RemoveFavorite 取消收藏
func (h *Handler) RemoveFavorite(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := handlershared.ParseUintParam(c, "product_id")
	if !ok {
		return
	}
	if err := h.FavoriteService.Remove(c.Request.Context(), uid, productID); err != nil {
		respondError(c, response.CodeInternal, "remove favorite failed", err)
		return
	}
	response.Success(c, gin.H{"favorited": false})
}
