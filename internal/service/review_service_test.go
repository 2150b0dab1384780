package service

import (
	"context"
	"testing"

	"github.com/bossshopp/internal/constants"
	"github.com/bossshopp/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadProduct(t *testing.T, h *serviceHarness, id uint) models.Product {
	t.Helper()
	var product models.Product
	require.NoError(t, h.DB.First(&product, id).Error)
	return product
}

func TestReviewUpsertRecomputesRating(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	_, err := h.Reviews.Upsert(ctx, fx.Phone.ID, fx.User.ID, 5, "Excelente", "Muito bom")
	require.NoError(t, err)
	_, err = h.Reviews.Upsert(ctx, fx.Phone.ID, fx.Other.ID, 4, "Bom", "")
	require.NoError(t, err)

	product := loadProduct(t, h, fx.Phone.ID)
	assert.True(t, product.Rating.Equal(decimal.RequireFromString("4.5")), product.Rating.String())
	assert.Equal(t, 2, product.ReviewCount)

	// 更新同一用户的评价也会重算
	_, err = h.Reviews.Upsert(ctx, fx.Phone.ID, fx.User.ID, 3, "Mudei de ideia", "")
	require.NoError(t, err)
	product = loadProduct(t, h, fx.Phone.ID)
	assert.True(t, product.Rating.Equal(decimal.RequireFromString("3.5")), product.Rating.String())
	assert.Equal(t, 2, product.ReviewCount)
	assert.Equal(t, int64(2), countRows(t, h.DB, &models.ProductReview{}))
}

func TestReviewRatingIgnoresUnapproved(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	first, err := h.Reviews.Upsert(ctx, fx.Laptop.ID, fx.User.ID, 1, "", "")
	require.NoError(t, err)
	require.NoError(t, h.DB.Model(&models.ProductReview{}).Where("id = ?", first.ID).Update("is_approved", false).Error)

	_, err = h.Reviews.Upsert(ctx, fx.Laptop.ID, fx.Other.ID, 5, "", "")
	require.NoError(t, err)

	product := loadProduct(t, h, fx.Laptop.ID)
	assert.True(t, product.Rating.Equal(decimal.NewFromInt(5)), product.Rating.String())
	assert.Equal(t, 1, product.ReviewCount)

	reviews, err := h.Reviews.ListByProduct(ctx, fx.Laptop.ID, 10)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, fx.Other.Name, reviews[0].UserName)
}

func TestReviewValidation(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	_, err := h.Reviews.Upsert(ctx, fx.Phone.ID, fx.User.ID, 0, "", "")
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = h.Reviews.Upsert(ctx, fx.Phone.ID, fx.User.ID, 6, "", "")
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = h.Reviews.Upsert(ctx, 9999, fx.User.ID, 4, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewMarksVerifiedPurchase(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	order, err := h.Orders.Create(ctx, CreateOrderInput{UserID: fx.User.ID, Items: []OrderLineInput{{ProductID: fx.Phone.ID, Quantity: 1}}})
	require.NoError(t, err)

	review, err := h.Reviews.Upsert(ctx, fx.Phone.ID, fx.User.ID, 5, "", "")
	require.NoError(t, err)
	assert.False(t, review.IsVerifiedPurchase)

	for _, status := range []string{constants.OrderStatusProcessing, constants.OrderStatusShipped} {
		_, err = h.Orders.UpdateStatus(ctx, order.ID, status)
		require.NoError(t, err)
	}
	review, err = h.Reviews.Upsert(ctx, fx.Phone.ID, fx.User.ID, 5, "", "")
	require.NoError(t, err)
	assert.True(t, review.IsVerifiedPurchase)
}

func TestAverageRating(t *testing.T) {
	avg, count := averageRating([]int{5, 4, 5})
	assert.Equal(t, 3, count)
	assert.Equal(t, "4.67", avg.StringFixed(2))

	avg, count = averageRating(nil)
	assert.Equal(t, 0, count)
	assert.True(t, avg.IsZero())
}
