package repository

import (
	"context"

	"github.com/bossshopp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository 收藏数据访问接口
type FavoriteRepository interface {
	Add(ctx context.Context, userID, productID uint) error
	Remove(ctx context.Context, userID, productID uint) (int64, error)
	ListActiveByUser(ctx context.Context, userID uint) ([]models.Favorite, error)
}

// GormFavoriteRepository GORM 实现
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository 创建收藏仓库
func NewFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// Add 收藏，已存在时忽略
func (r *GormFavoriteRepository) Add(ctx context.Context, userID, productID uint) error {
	favorite := models.Favorite{UserID: userID, ProductID: productID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&favorite).Error
}

// Remove 取消收藏
func (r *GormFavoriteRepository) Remove(ctx context.Context, userID, productID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Favorite{})
	return result.RowsAffected, result.Error
}

// ListActiveByUser 用户收藏（仅上架商品，最新优先）
func (r *GormFavoriteRepository) ListActiveByUser(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.WithContext(ctx).
		InnerJoins("Product", r.db.Where(&models.Product{IsActive: true})).
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC, favorites.id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}
