package repository

import (
	"context"
	"errors"

	"github.com/bossshopp/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository 商品评价数据访问接口
type ReviewRepository interface {
	Upsert(ctx context.Context, review *models.ProductReview) (bool, error)
	Get(ctx context.Context, userID, productID uint) (*models.ProductReview, error)
	ApprovedRatings(ctx context.Context, productID uint) ([]int, error)
	ListApprovedByProduct(ctx context.Context, productID uint, limit int) ([]models.ProductReview, error)
	WithTx(tx *gorm.DB) ReviewRepository
}

// GormReviewRepository GORM 实现
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	if tx == nil {
		return r
	}
	return &GormReviewRepository{db: tx}
}

// Get 获取用户对商品的评价
func (r *GormReviewRepository) Get(ctx context.Context, userID, productID uint) (*models.ProductReview, error) {
	var review models.ProductReview
	err := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// Upsert 按 (user, product) 插入或更新，返回是否为新建
func (r *GormReviewRepository) Upsert(ctx context.Context, review *models.ProductReview) (bool, error) {
	if review == nil {
		return false, nil
	}
	existing, err := r.Get(ctx, review.UserID, review.ProductID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	updates := map[string]interface{}{
		"rating":               review.Rating,
		"title":                review.Title,
		"comment":              review.Comment,
		"is_verified_purchase": review.IsVerifiedPurchase,
	}
	if err := r.db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
		return false, err
	}
	review.ID = existing.ID
	review.IsApproved = existing.IsApproved
	review.CreatedAt = existing.CreatedAt
	return false, nil
}

// ApprovedRatings 商品全部已审核评分
func (r *GormReviewRepository) ApprovedRatings(ctx context.Context, productID uint) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).Model(&models.ProductReview{}).
		Where("product_id = ? AND is_approved = ?", productID, true).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// ListApprovedByProduct 已审核评价（最新优先，附评价人名称）
func (r *GormReviewRepository) ListApprovedByProduct(ctx context.Context, productID uint, limit int) ([]models.ProductReview, error) {
	var reviews []models.ProductReview
	query := r.db.WithContext(ctx).
		Model(&models.ProductReview{}).
		Select("product_reviews.*, users.name AS user_name").
		Joins("JOIN users ON users.id = product_reviews.user_id").
		Where("product_reviews.product_id = ? AND product_reviews.is_approved = ?", productID, true).
		Order("product_reviews.created_at DESC, product_reviews.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
