package public

import (
	"strings"

	handlershared "github.com/bossshopp/internal/http/handlers/shared"
	"github.com/bossshopp/internal/http/response"
	"github.com/bossshopp/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetCategories 启用分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CatalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "fetch categories failed", err)
		return
	}
	response.Success(c, categories)
}

// GetProducts 商品列表（分页）
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.ReadPagination(c)
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategorySlug: strings.TrimSpace(c.Query("category")),
		FeaturedOnly: c.Query("featured") == "true" || c.Query("featured") == "1",
	}
	products, total, err := h.CatalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch products failed", err)
		return
	}
	response.SuccessWithPage(c, products, handlershared.BuildPagination(page, pageSize, total))
}

// SearchProducts 商品搜索
func (h *Handler) SearchProducts(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		response.Success(c, []interface{}{})
		return
	}
	products, err := h.CatalogService.SearchProducts(c.Request.Context(), term, handlershared.QueryInt(c, "limit", 0))
	if err != nil {
		respondError(c, response.CodeInternal, "search products failed", err)
		return
	}
	response.Success(c, products)
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.CatalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch product failed")
		return
	}
	if product == nil {
		respondError(c, response.CodeNotFound, "product not found", nil)
		return
	}
	response.Success(c, product)
}

// GetProductReviews 商品已审核评价
func (h *Handler) GetProductReviews(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	reviews, err := h.ReviewService.ListByProduct(c.Request.Context(), id, handlershared.QueryInt(c, "limit", 0))
	if err != nil {
		respondError(c, response.CodeInternal, "fetch reviews failed", err)
		return
	}
	response.Success(c, reviews)
}

// GetPublicSettings 公开站点设置
func (h *Handler) GetPublicSettings(c *gin.Context) {
	settings, err := h.SettingService.Public(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "fetch settings failed", err)
		return
	}
	response.Success(c, settings)
}
