package service

import (
	"context"
	"strings"
	"time"

	"github.com/bossshopp/internal/constants"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// verifiedPurchaseStatuses 判定已购的订单状态
var verifiedPurchaseStatuses = []string{constants.OrderStatusDelivered, constants.OrderStatusShipped}

// ReviewService 商品评价服务
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	timeout     time.Duration
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository, orderRepo repository.OrderRepository, timeout time.Duration) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		timeout:     timeout,
	}
}

// Upsert 新增或更新评价，并在同一事务内重算商品评分
func (s *ReviewService) Upsert(ctx context.Context, productID, userID uint, rating int, title, comment string) (*models.ProductReview, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	review := &models.ProductReview{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Title:     strings.TrimSpace(title),
		Comment:   strings.TrimSpace(comment),
	}
	err := s.productRepo.Transaction(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		reviewRepo := s.reviewRepo.WithTx(tx)

		product, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrNotFound
		}
		verified, err := s.orderRepo.WithTx(tx).HasPurchased(ctx, userID, productID, verifiedPurchaseStatuses)
		if err != nil {
			return err
		}
		review.IsVerifiedPurchase = verified

		if _, err := reviewRepo.Upsert(ctx, review); err != nil {
			return translateConstraint(err, nil)
		}
		ratings, err := reviewRepo.ApprovedRatings(ctx, productID)
		if err != nil {
			return err
		}
		average, count := averageRating(ratings)
		return productRepo.UpdateRatingAggregate(ctx, productID, average, count)
	})
	if err != nil {
		logger.Warnw("review_upsert_failed", "product_id", productID, "user_id", userID, "error", err)
		return nil, err
	}
	return review, nil
}

// ListByProduct 已审核评价（最新优先）
func (s *ReviewService) ListByProduct(ctx context.Context, productID uint, limit int) ([]models.ProductReview, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	return s.reviewRepo.ListApprovedByProduct(ctx, productID, clampSearchLimit(limit, defaultSearchLimit, maxSearchLimit))
}

// averageRating 评分均值（两位小数）与数量
func averageRating(ratings []int) (decimal.Decimal, int) {
	if len(ratings) == 0 {
		return decimal.Zero, 0
	}
	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(r)))
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(ratings))), 2), len(ratings)
}
