package service

import (
	"context"
	"testing"

	"github.com/bossshopp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreateProductRecordsInitialStock(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	product, err := h.Catalog.CreateProduct(ctx, CreateProductInput{
		CategoryID:    fx.Category.ID,
		Name:          "Fone Bluetooth",
		Price:         models.MustMoney("199.90"),
		StockQuantity: 12,
		SKU:           "ELE-FON-001",
		IsActive:      true,
	})
	require.NoError(t, err)
	require.NotZero(t, product.ID)

	history, err := h.Catalog.StockHistory(ctx, product.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StockMovementIn, history[0].MovementType)
	assert.Equal(t, models.StockReferencePurchase, history[0].ReferenceType)
	assert.Equal(t, 12, history[0].Quantity)

	_, err = h.Catalog.CreateProduct(ctx, CreateProductInput{
		CategoryID: fx.Category.ID, Name: "Outro", Price: models.MustMoney("1.00"), SKU: "ELE-FON-001", IsActive: true,
	})
	assert.ErrorIs(t, err, ErrSKUExists)
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestCatalogCreateInactiveProductIsHidden(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	product, err := h.Catalog.CreateProduct(ctx, CreateProductInput{
		CategoryID: fx.Category.ID, Name: "Rascunho", Price: models.MustMoney("10.00"),
	})
	require.NoError(t, err)
	assert.False(t, product.IsActive)

	got, err := h.Catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	active := true
	_, err = h.Catalog.UpdateProduct(ctx, product.ID, UpdateProductInput{IsActive: &active})
	require.NoError(t, err)
	got, err = h.Catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestCatalogAdjustStockNeverNegative(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	product, err := h.Catalog.AdjustStock(ctx, fx.Laptop.ID, -3, "inventário")
	require.NoError(t, err)
	assert.Equal(t, 2, product.StockQuantity)

	_, err = h.Catalog.AdjustStock(ctx, fx.Laptop.ID, -3, "")
	assert.ErrorIs(t, err, ErrOutOfStock)
	_, err = h.Catalog.AdjustStock(ctx, fx.Laptop.ID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = h.Catalog.AdjustStock(ctx, 9999, 1, "")
	assert.ErrorIs(t, err, ErrNotFound)

	history, err := h.Catalog.StockHistory(ctx, fx.Laptop.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, -3, history[0].Quantity)
}

func TestCatalogSearchAndLowStock(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	products, err := h.Catalog.SearchProducts(ctx, "NOTEBOOK", 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, fx.Laptop.ID, products[0].ID)

	low, err := h.Catalog.ListLowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, fx.Laptop.ID, low[0].ID)

	require.NoError(t, h.Catalog.RecordLowStockAlert(ctx, fx.Laptop.ID, 5, 5))
	history, err := h.Catalog.StockHistory(ctx, fx.Laptop.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].Quantity)
	assert.Contains(t, history[0].Notes, "low stock")
}

func TestClampSearchLimit(t *testing.T) {
	assert.Equal(t, 20, clampSearchLimit(0, 20, 100))
	assert.Equal(t, 100, clampSearchLimit(500, 20, 100))
	assert.Equal(t, 7, clampSearchLimit(7, 20, 100))
}
