package service

import (
	"context"
	"testing"

	"github.com/bossshopp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddAccumulatesQuantity(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	require.NoError(t, h.Cart.Add(ctx, fx.User.ID, fx.Phone.ID, 2))
	require.NoError(t, h.Cart.Add(ctx, fx.User.ID, fx.Phone.ID, 3))

	summary, err := h.Cart.List(ctx, fx.User.ID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, 5, summary.Lines[0].Item.Quantity)
	assert.Equal(t, "125.00", summary.Total.String())
	assert.Equal(t, 5, summary.TotalItems)
}

func TestCartUpdateZeroRemovesRow(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	require.NoError(t, h.Cart.Add(ctx, fx.User.ID, fx.Laptop.ID, 1))
	require.NoError(t, h.Cart.Update(ctx, fx.User.ID, fx.Laptop.ID, 3))
	require.NoError(t, h.Cart.Update(ctx, fx.User.ID, fx.Laptop.ID, 0))

	assert.Equal(t, int64(0), countRows(t, h.DB, &models.CartItem{}))
	assert.ErrorIs(t, h.Cart.Update(ctx, fx.User.ID, fx.Laptop.ID, 2), ErrNotFound)
}

func TestCartRejectsInvalidRequests(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	assert.ErrorIs(t, h.Cart.Add(ctx, fx.User.ID, fx.Phone.ID, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, h.Cart.Add(ctx, fx.User.ID, 9999, 1), ErrProductNotAvailable)
	assert.ErrorIs(t, h.Cart.Add(ctx, fx.User.ID, fx.Laptop.ID, 6), ErrOutOfStock)

	require.NoError(t, h.Cart.Add(ctx, fx.User.ID, fx.Laptop.ID, 5))
	assert.ErrorIs(t, h.Cart.Add(ctx, fx.User.ID, fx.Laptop.ID, 1), ErrOutOfStock)
	assert.ErrorIs(t, h.Cart.Update(ctx, fx.User.ID, fx.Laptop.ID, 7), ErrOutOfStock)
}

func TestCartLimitFromSettings(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	require.NoError(t, h.Settings.Set(ctx, models.SettingMaxCartItems, "1"))
	require.NoError(t, h.Cart.Add(ctx, fx.User.ID, fx.Phone.ID, 1))
	assert.ErrorIs(t, h.Cart.Add(ctx, fx.User.ID, fx.Laptop.ID, 1), ErrCartFull)
	// 已在购物车中的商品仍可累加
	assert.NoError(t, h.Cart.Add(ctx, fx.User.ID, fx.Phone.ID, 1))
}

func TestCartListHidesInactiveProducts(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	require.NoError(t, h.Cart.Add(ctx, fx.User.ID, fx.Phone.ID, 1))
	require.NoError(t, h.Cart.Add(ctx, fx.User.ID, fx.Laptop.ID, 1))
	require.NoError(t, h.DB.Model(&models.Product{}).Where("id = ?", fx.Laptop.ID).Update("is_active", false).Error)

	summary, err := h.Cart.List(ctx, fx.User.ID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, fx.Phone.ID, summary.Lines[0].Product.ID)
	assert.Equal(t, int64(2), countRows(t, h.DB, &models.CartItem{}))

	require.NoError(t, h.Cart.Clear(ctx, fx.User.ID))
	assert.Equal(t, int64(0), countRows(t, h.DB, &models.CartItem{}))
}

func TestCartAddForMissingUserIsConstraintViolation(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)

	err := h.Cart.Add(context.Background(), fx.Other.ID+100, fx.Phone.ID, 1)
	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.Equal(t, int64(0), countRows(t, h.DB, &models.CartItem{}))
}

func TestCartAddStockBoundHoldsAfterStockDrops(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	require.NoError(t, h.Cart.Add(ctx, fx.User.ID, fx.Phone.ID, 4))
	require.NoError(t, h.DB.Model(&models.Product{}).Where("id = ?", fx.Phone.ID).Update("stock_quantity", 5).Error)
	assert.ErrorIs(t, h.Cart.Add(ctx, fx.User.ID, fx.Phone.ID, 2), ErrOutOfStock)
	require.NoError(t, h.Cart.Add(ctx, fx.User.ID, fx.Phone.ID, 1))
}
