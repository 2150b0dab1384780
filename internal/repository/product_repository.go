package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bossshopp/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	ListActive(ctx context.Context, filter ProductListFilter) ([]models.Product, int64, error)
	Search(ctx context.Context, term string, limit int) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetActiveByID(ctx context.Context, id uint) (*models.Product, error)
	ListActiveByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
	ListLowStock(ctx context.Context, threshold int) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	DecrementStock(ctx context.Context, productID uint, quantity int) (int64, error)
	IncrementStock(ctx context.Context, productID uint, quantity int) (int64, error)
	AdjustStock(ctx context.Context, productID uint, delta int) (int64, error)
	UpdateRatingAggregate(ctx context.Context, productID uint, rating decimal.Decimal, count int) error
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

// activeCatalog 上架商品且所属分类启用
func (r *GormProductRepository) activeCatalog(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.is_active = ? AND categories.is_active = ?", true, true)
}

// ListActive 商品列表（最新优先）
func (r *GormProductRepository) ListActive(ctx context.Context, filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.activeCatalog(ctx)
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		query = query.Where("categories.slug = ?", slug)
	}
	if filter.FeaturedOnly {
		query = query.Where("products.is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []models.Product
	err := applyPagination(query, filter.Page, filter.PageSize).
		Preload("Category").
		Order("products.created_at DESC, products.id DESC").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Search 名称/描述子串搜索（大小写不敏感），按名称排序
func (r *GormProductRepository) Search(ctx context.Context, term string, limit int) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" || limit <= 0 {
		return []models.Product{}, nil
	}
	condition, argCount := buildInsensitiveLikeCondition(dbDialectName(r.db), []string{"products.name", "products.description"})
	var products []models.Product
	err := r.activeCatalog(ctx).
		Where(condition, repeatLikeArgs(containsPattern(term), argCount)...).
		Preload("Category").
		Order("products.name ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID 根据 ID 获取商品（不限状态）
func (r *GormProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetActiveByID 根据 ID 获取上架商品
func (r *GormProductRepository) GetActiveByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListActiveByIDs 批量获取上架商品
func (r *GormProductRepository) ListActiveByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListLowStock 库存不高于阈值的上架商品
func (r *GormProductRepository) ListLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock_quantity <= ?", true, threshold).
		Order("stock_quantity ASC, id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// UpdateFields 更新指定字段
func (r *GormProductRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

// DecrementStock 条件扣减库存，库存不足时影响行数为 0
func (r *GormProductRepository) DecrementStock(ctx context.Context, productID uint, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// IncrementStock 回补库存
func (r *GormProductRepository) IncrementStock(ctx context.Context, productID uint, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// AdjustStock 按增量调整库存，结果不得为负
func (r *GormProductRepository) AdjustStock(ctx context.Context, productID uint, delta int) (int64, error) {
	if delta == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock_quantity + ? >= 0", productID, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpdateRatingAggregate 写入评分聚合
func (r *GormProductRepository) UpdateRatingAggregate(ctx context.Context, productID uint, rating decimal.Decimal, count int) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       rating.Round(2).StringFixed(2),
			"review_count": count,
		}).Error
}
