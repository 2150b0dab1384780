package admin

import (
	handlershared "github.com/bossshopp/internal/http/handlers/shared"
	"github.com/bossshopp/internal/http/response"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	CategoryID    uint            `json:"category_id" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         models.Money    `json:"price"`
	OldPrice      *models.Money   `json:"old_price"`
	StockQuantity int             `json:"stock_quantity"`
	SKU           string          `json:"sku"`
	Weight        decimal.Decimal `json:"weight"`
	Dimensions    string          `json:"dimensions"`
	ImageURL      string          `json:"image_url"`
	IsActive      *bool           `json:"is_active"`
	IsFeatured    bool            `json:"is_featured"`
}

// UpdateProductRequest 更新商品请求（库存走独立接口）
type UpdateProductRequest struct {
	CategoryID  *uint         `json:"category_id"`
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Price       *models.Money `json:"price"`
	OldPrice    *models.Money `json:"old_price"`
	SKU         *string       `json:"sku"`
	Dimensions  *string       `json:"dimensions"`
	ImageURL    *string       `json:"image_url"`
	IsActive    *bool         `json:"is_active"`
	IsFeatured  *bool         `json:"is_featured"`
}

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	Delta int    `json:"delta" binding:"required"`
	Notes string `json:"notes"`
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product, err := h.CatalogService.CreateProduct(c.Request.Context(), service.CreateProductInput{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OldPrice:      req.OldPrice,
		StockQuantity: req.StockQuantity,
		SKU:           req.SKU,
		Weight:        req.Weight,
		Dimensions:    req.Dimensions,
		ImageURL:      req.ImageURL,
		IsActive:      active,
		IsFeatured:    req.IsFeatured,
	})
	if err != nil {
		respondServiceError(c, err, "create product failed")
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.CatalogService.UpdateProduct(c.Request.Context(), id, service.UpdateProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		OldPrice:    req.OldPrice,
		SKU:         req.SKU,
		Dimensions:  req.Dimensions,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		respondServiceError(c, err, "update product failed")
		return
	}
	response.Success(c, product)
}

// AdjustProductStock 调整库存
func (h *Handler) AdjustProductStock(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.CatalogService.AdjustStock(c.Request.Context(), id, req.Delta, req.Notes)
	if err != nil {
		respondServiceError(c, err, "adjust stock failed")
		return
	}
	response.Success(c, product)
}

// GetProductStockHistory 库存流水
func (h *Handler) GetProductStockHistory(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	movements, err := h.CatalogService.StockHistory(c.Request.Context(), id, handlershared.QueryInt(c, "limit", 0))
	if err != nil {
		respondError(c, response.CodeInternal, "fetch stock history failed", err)
		return
	}
	response.Success(c, movements)
}

// GetLowStockProducts 低库存商品
func (h *Handler) GetLowStockProducts(c *gin.Context) {
	threshold := handlershared.QueryInt(c, "threshold", h.Config.Catalog.LowStockThreshold)
	if threshold < 0 {
		threshold = 0
	}
	products, err := h.CatalogService.ListLowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch low stock products failed", err)
		return
	}
	response.Success(c, products)
}
