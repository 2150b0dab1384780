package admin

import (
	handlershared "github.com/bossshopp/internal/http/handlers/shared"
	"github.com/bossshopp/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetSalesStatistics 销售统计
func (h *Handler) GetSalesStatistics(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid from", nil)
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid to", nil)
		return
	}
	stats, err := h.ReportService.SalesStatistics(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch sales statistics failed", err)
		return
	}
	response.Success(c, stats)
}

// GetTopProducts 热销商品
func (h *Handler) GetTopProducts(c *gin.Context) {
	items, err := h.ReportService.TopProducts(c.Request.Context(), handlershared.QueryInt(c, "limit", 0))
	if err != nil {
		respondError(c, response.CodeInternal, "fetch top products failed", err)
		return
	}
	response.Success(c, items)
}

// GetUserStatistics 用户统计
func (h *Handler) GetUserStatistics(c *gin.Context) {
	stats, err := h.ReportService.UserStatistics(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "fetch user statistics failed", err)
		return
	}
	response.Success(c, stats)
}

// GetDailySales 按日销售额
func (h *Handler) GetDailySales(c *gin.Context) {
	items, err := h.ReportService.DailySales(c.Request.Context(), handlershared.QueryInt(c, "days", 0))
	if err != nil {
		respondError(c, response.CodeInternal, "fetch daily sales failed", err)
		return
	}
	response.Success(c, items)
}
