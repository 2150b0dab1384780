package repository

import (
	"context"

	"github.com/bossshopp/internal/models"

	"gorm.io/gorm"
)

// StockMovementRepository 库存流水数据访问接口（只追加）
type StockMovementRepository interface {
	Append(ctx context.Context, movements ...models.StockMovement) error
	ListByProduct(ctx context.Context, productID uint, limit int) ([]models.StockMovement, error)
	ListByReference(ctx context.Context, referenceType string, referenceID uint) ([]models.StockMovement, error)
	WithTx(tx *gorm.DB) StockMovementRepository
}

// GormStockMovementRepository GORM 实现
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewStockMovementRepository 创建库存流水仓库
func NewStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockMovementRepository) WithTx(tx *gorm.DB) StockMovementRepository {
	if tx == nil {
		return r
	}
	return &GormStockMovementRepository{db: tx}
}

// Append 追加流水
func (r *GormStockMovementRepository) Append(ctx context.Context, movements ...models.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&movements).Error
}

// ListByProduct 商品流水（最新优先）
func (r *GormStockMovementRepository) ListByProduct(ctx context.Context, productID uint, limit int) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	query := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// ListByReference 按来源查询流水
func (r *GormStockMovementRepository) ListByReference(ctx context.Context, referenceType string, referenceID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("id ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
