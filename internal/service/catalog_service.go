package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	maxPageSize        = 100
)

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	CategoryID    uint
	Name          string
	Description   string
	Price         models.Money
	OldPrice      *models.Money
	StockQuantity int
	SKU           string
	Weight        decimal.Decimal
	Dimensions    string
	ImageURL      string
	IsActive      bool
	IsFeatured    bool
}

// UpdateProductInput 商品更新输入，nil 字段不修改
type UpdateProductInput struct {
	CategoryID  *uint
	Name        *string
	Description *string
	Price       *models.Money
	OldPrice    *models.Money
	SKU         *string
	Dimensions  *string
	ImageURL    *string
	IsActive    *bool
	IsFeatured  *bool
}

// CatalogService 商品目录服务
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	searchLimit  int
	searchMax    int
	timeout      time.Duration
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(cfg *config.Config, categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository, movementRepo repository.StockMovementRepository) *CatalogService {
	searchLimit := cfg.Catalog.SearchDefaultLimit
	if searchLimit <= 0 {
		searchLimit = defaultSearchLimit
	}
	searchMax := cfg.Catalog.SearchMaxLimit
	if searchMax <= 0 {
		searchMax = maxSearchLimit
	}
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		searchLimit:  searchLimit,
		searchMax:    searchMax,
		timeout:      cfg.Database.StatementTimeout(),
	}
}

// ListCategories 启用分类（附上架商品数）
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	return s.categoryRepo.ListActiveWithCounts(ctx)
}

// ListProducts 商品列表（最新优先）
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductListFilter) ([]models.Product, int64, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultSearchLimit
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	return s.productRepo.ListActive(ctx, filter)
}

// GetProduct 获取上架商品，不存在或已下架返回 nil
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	product, err := s.productRepo.GetActiveByID(ctx, id)
	if err != nil || product == nil {
		return nil, err
	}
	if product.Category != nil && !product.Category.IsActive {
		return nil, nil
	}
	return product, nil
}

// SearchProducts 名称/描述搜索
func (s *CatalogService) SearchProducts(ctx context.Context, term string, limit int) ([]models.Product, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	limit = clampSearchLimit(limit, s.searchLimit, s.searchMax)
	products, err := s.productRepo.Search(ctx, term, limit)
	if err != nil {
		logger.Warnw("catalog_search_failed", "term", term, "error", err)
		return nil, err
	}
	return products, nil
}

// CreateProduct 创建商品
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	name := strings.TrimSpace(input.Name)
	if name == "" || input.CategoryID == 0 || input.Price.IsNegative() || input.StockQuantity < 0 {
		return nil, ErrInvalidInput
	}
	category, err := s.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}

	product := &models.Product{
		CategoryID:    input.CategoryID,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		Price:         input.Price,
		OldPrice:      input.OldPrice,
		StockQuantity: input.StockQuantity,
		Weight:        input.Weight,
		Dimensions:    strings.TrimSpace(input.Dimensions),
		ImageURL:      strings.TrimSpace(input.ImageURL),
		IsActive:      true,
		IsFeatured:    input.IsFeatured,
	}
	if sku := strings.TrimSpace(input.SKU); sku != "" {
		product.SKU = &sku
	}

	err = s.productRepo.Transaction(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		if err := productRepo.Create(ctx, product); err != nil {
			return translateConstraint(err, ErrSKUExists)
		}
		// is_active 带默认值，下架状态需在创建后写入
		if !input.IsActive {
			if _, err := productRepo.UpdateFields(ctx, product.ID, map[string]interface{}{"is_active": false}); err != nil {
				return err
			}
			product.IsActive = false
		}
		if product.StockQuantity > 0 {
			ref := product.ID
			return s.movementRepo.WithTx(tx).Append(ctx, models.StockMovement{
				ProductID:     product.ID,
				MovementType:  models.StockMovementIn,
				Quantity:      product.StockQuantity,
				ReferenceType: models.StockReferencePurchase,
				ReferenceID:   &ref,
				Notes:         "initial stock",
			})
		}
		return nil
	})
	if err != nil {
		logger.Warnw("catalog_create_product_failed", "name", name, "error", err)
		return nil, err
	}
	logger.Infow("catalog_product_created", "product_id", product.ID, "sku", product.SKUValue())
	return product, nil
}

// UpdateProduct 更新商品
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, input UpdateProductInput) (*models.Product, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	fields := map[string]interface{}{}
	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrNotFound
		}
		fields["category_id"] = *input.CategoryID
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		fields["name"] = name
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, ErrInvalidInput
		}
		fields["price"] = *input.Price
	}
	if input.OldPrice != nil {
		fields["old_price"] = *input.OldPrice
	}
	if input.SKU != nil {
		if sku := strings.TrimSpace(*input.SKU); sku != "" {
			fields["sku"] = sku
		} else {
			fields["sku"] = nil
		}
	}
	if input.Dimensions != nil {
		fields["dimensions"] = strings.TrimSpace(*input.Dimensions)
	}
	if input.ImageURL != nil {
		fields["image_url"] = strings.TrimSpace(*input.ImageURL)
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if input.IsFeatured != nil {
		fields["is_featured"] = *input.IsFeatured
	}

	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if _, err := s.productRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, translateConstraint(err, ErrSKUExists)
	}
	return s.productRepo.GetByID(ctx, id)
}

// AdjustStock 按增量调整库存并记录流水，结果不得为负
func (s *CatalogService) AdjustStock(ctx context.Context, productID uint, delta int, notes string) (*models.Product, error) {
	if delta == 0 {
		return nil, ErrInvalidQuantity
	}
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	err := s.productRepo.Transaction(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		product, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrNotFound
		}
		affected, err := productRepo.AdjustStock(ctx, productID, delta)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOutOfStock
		}
		ref := productID
		return s.movementRepo.WithTx(tx).Append(ctx, models.StockMovement{
			ProductID:     productID,
			MovementType:  models.StockMovementAdjustment,
			Quantity:      delta,
			ReferenceType: models.StockReferenceAdjustment,
			ReferenceID:   &ref,
			Notes:         strings.TrimSpace(notes),
		})
	})
	if err != nil {
		logger.Warnw("catalog_adjust_stock_failed", "product_id", productID, "delta", delta, "error", err)
		return nil, err
	}
	logger.Infow("catalog_stock_adjusted", "product_id", productID, "delta", delta)
	return s.productRepo.GetByID(ctx, productID)
}

// RecordLowStockAlert 低库存告警留痕：写入一条数量为 0 的调整流水
func (s *CatalogService) RecordLowStockAlert(ctx context.Context, productID uint, stock, threshold int) error {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound
	}
	logger.Warnw("catalog_low_stock",
		"product_id", product.ID,
		"product_name", product.Name,
		"stock_quantity", product.StockQuantity,
		"reported_stock", stock,
		"threshold", threshold,
	)
	ref := product.ID
	return s.movementRepo.Append(ctx, models.StockMovement{
		ProductID:     product.ID,
		MovementType:  models.StockMovementAdjustment,
		Quantity:      0,
		ReferenceType: models.StockReferenceAdjustment,
		ReferenceID:   &ref,
		Notes:         fmt.Sprintf("low stock alert: %d left (threshold %d)", product.StockQuantity, threshold),
	})
}

// ListLowStock 低库存商品
func (s *CatalogService) ListLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	return s.productRepo.ListLowStock(ctx, threshold)
}

// StockHistory 商品库存流水
func (s *CatalogService) StockHistory(ctx context.Context, productID uint, limit int) ([]models.StockMovement, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	return s.movementRepo.ListByProduct(ctx, productID, clampSearchLimit(limit, defaultSearchLimit, maxSearchLimit))
}

func clampSearchLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}
