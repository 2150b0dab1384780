package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bossshopp/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.CartItem, error)
	Get(ctx context.Context, userID, productID uint) (*models.CartItem, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Increment(ctx context.Context, userID, productID uint, quantity, maxLines int) error
	SetQuantity(ctx context.Context, userID, productID uint, quantity int) (int64, error)
	DeleteByUserAndProduct(ctx context.Context, userID, productID uint) error
	ClearByUser(ctx context.Context, userID uint) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByUser 获取用户购物车项（含商品，最新优先）
func (r *GormCartRepository) ListByUser(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Get 获取单个购物车项
func (r *GormCartRepository) Get(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// CountByUser 购物车行数
func (r *GormCartRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// 累加被库存或行数上限拒绝
var (
	ErrCartStockExceeded = errors.New("cart quantity exceeds product stock")
	ErrCartLineLimit     = errors.New("cart line limit reached")
)

// stockBoundCond 累加后数量不超过商品库存
const stockBoundCond = "quantity + ? <= (SELECT stock_quantity FROM products WHERE products.id = cart_items.product_id)"

// boundedInsertSQL 库存足够且未达行数上限时插入新行（maxLines<=0 不限）
const boundedInsertSQL = `INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
SELECT ?, ?, ?, ?, ? FROM products
WHERE products.id = ? AND products.stock_quantity >= ?
AND (? <= 0 OR (SELECT COUNT(*) FROM cart_items WHERE user_id = ?) < ?)`

// Increment 已存在则累加数量，否则插入。
// 库存与行数校验写在同一条 SQL 的条件里，并发累加无法越过上限。
func (r *GormCartRepository) Increment(ctx context.Context, userID, productID uint, quantity, maxLines int) error {
	db := r.db.WithContext(ctx)
	updated, err := r.incrementExisting(db, userID, productID, quantity)
	if err != nil || updated {
		return err
	}
	existing, err := r.Get(ctx, userID, productID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrCartStockExceeded
	}

	now := time.Now()
	result := db.Exec(boundedInsertSQL,
		userID, productID, quantity, now, now,
		productID, quantity,
		maxLines, userID, maxLines)
	if result.Error != nil {
		if !IsDuplicateKeyError(result.Error) {
			return result.Error
		}
		// 并发插入同一行时退化为累加
		updated, err = r.incrementExisting(db, userID, productID, quantity)
		if err != nil {
			return err
		}
		if !updated {
			return ErrCartStockExceeded
		}
		return nil
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if maxLines > 0 {
		count, err := r.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if count >= int64(maxLines) {
			return ErrCartLineLimit
		}
	}
	return ErrCartStockExceeded
}

func (r *GormCartRepository) incrementExisting(db *gorm.DB, userID, productID uint, quantity int) (bool, error) {
	result := db.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Where(stockBoundCond, quantity).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	return result.RowsAffected > 0, result.Error
}

// SetQuantity 覆盖数量，返回影响行数
func (r *GormCartRepository) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	return result.RowsAffected, result.Error
}

// DeleteByUserAndProduct 删除购物车项
func (r *GormCartRepository) DeleteByUserAndProduct(ctx context.Context, userID, productID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{}).Error
}

// ClearByUser 清空购物车
func (r *GormCartRepository) ClearByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
