package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/bossshopp/internal/models"

	"github.com/shopspring/decimal"
)

func TestProductListActiveExcludesInactive(t *testing.T) {
	db := openRepositoryTestDB(t)
	fx := seedCatalog(t, db)
	repo := NewProductRepository(db)

	products, total, err := repo.ListActive(context.Background(), ProductListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if total != 2 || len(products) != 2 {
		t.Fatalf("want 2 active products, got total=%d len=%d", total, len(products))
	}
	for _, p := range products {
		if p.ID == fx.Hidden.ID {
			t.Fatalf("inactive product should not be listed")
		}
		if p.Category == nil || p.Category.Slug != "eletronicos" {
			t.Fatalf("category should be preloaded: %+v", p.Category)
		}
	}

	featured, total, err := repo.ListActive(context.Background(), ProductListFilter{FeaturedOnly: true})
	if err != nil {
		t.Fatalf("list featured failed: %v", err)
	}
	if total != 1 || featured[0].ID != fx.Phone.ID {
		t.Fatalf("featured filter mismatch: total=%d", total)
	}
}

func TestProductSearchIsCaseInsensitiveAndEscaped(t *testing.T) {
	db := openRepositoryTestDB(t)
	fx := seedCatalog(t, db)
	repo := NewProductRepository(db)
	ctx := context.Background()

	got, err := repo.Search(ctx, "SMARTPHONE", 20)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != fx.Phone.ID {
		t.Fatalf("want smartphone only, got %d rows", len(got))
	}

	byDescription, err := repo.Search(ctx, "ssd", 20)
	if err != nil {
		t.Fatalf("search description failed: %v", err)
	}
	if len(byDescription) != 1 || byDescription[0].ID != fx.Laptop.ID {
		t.Fatalf("description match expected laptop")
	}

	wildcard, err := repo.Search(ctx, "%", 20)
	if err != nil {
		t.Fatalf("search wildcard failed: %v", err)
	}
	if len(wildcard) != 0 {
		t.Fatalf("literal %% should not match every product, got %d", len(wildcard))
	}

	hidden, err := repo.Search(ctx, "sofá", 20)
	if err != nil {
		t.Fatalf("search hidden failed: %v", err)
	}
	if len(hidden) != 0 {
		t.Fatalf("inactive product should not be searchable")
	}
}

func TestProductDecrementStockNeverGoesNegative(t *testing.T) {
	db := openRepositoryTestDB(t)
	fx := seedCatalog(t, db)
	repo := NewProductRepository(db)
	ctx := context.Background()

	affected, err := repo.DecrementStock(ctx, fx.Laptop.ID, 6)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("insufficient stock should affect 0 rows, got %d", affected)
	}

	affected, err = repo.DecrementStock(ctx, fx.Laptop.ID, 5)
	if err != nil || affected != 1 {
		t.Fatalf("exact stock decrement want 1 row, got %d err=%v", affected, err)
	}
	product, err := repo.GetByID(ctx, fx.Laptop.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product.StockQuantity != 0 {
		t.Fatalf("stock want 0 got %d", product.StockQuantity)
	}

	affected, err = repo.AdjustStock(ctx, fx.Laptop.ID, -1)
	if err != nil || affected != 0 {
		t.Fatalf("negative adjustment below zero should affect 0 rows, got %d err=%v", affected, err)
	}
	if _, err := repo.IncrementStock(ctx, fx.Laptop.ID, 3); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	product, _ = repo.GetByID(ctx, fx.Laptop.ID)
	if product.StockQuantity != 3 {
		t.Fatalf("stock want 3 got %d", product.StockQuantity)
	}
}

func TestProductConcurrentDecrementKeepsFloor(t *testing.T) {
	db := openRepositoryTestDB(t)
	fx := seedCatalog(t, db)
	repo := NewProductRepository(db)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := repo.DecrementStock(ctx, fx.Laptop.ID, 1)
			if err != nil {
				return
			}
			mu.Lock()
			success += affected
			mu.Unlock()
		}()
	}
	wg.Wait()

	product, err := repo.GetByID(ctx, fx.Laptop.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product.StockQuantity < 0 {
		t.Fatalf("stock must not be negative: %d", product.StockQuantity)
	}
	if int64(fx.Laptop.StockQuantity)-success != int64(product.StockQuantity) {
		t.Fatalf("stock mismatch: start=%d success=%d now=%d", fx.Laptop.StockQuantity, success, product.StockQuantity)
	}
}

func TestProductUpdateRatingAggregate(t *testing.T) {
	db := openRepositoryTestDB(t)
	fx := seedCatalog(t, db)
	repo := NewProductRepository(db)
	ctx := context.Background()

	if err := repo.UpdateRatingAggregate(ctx, fx.Phone.ID, decimal.RequireFromString("4.666"), 3); err != nil {
		t.Fatalf("update rating failed: %v", err)
	}
	var product models.Product
	if err := db.First(&product, fx.Phone.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !product.Rating.Equal(decimal.RequireFromString("4.67")) {
		t.Fatalf("rating want 4.67 got %s", product.Rating)
	}
	if product.ReviewCount != 3 {
		t.Fatalf("review count want 3 got %d", product.ReviewCount)
	}
}

func TestCategoryListActiveWithCounts(t *testing.T) {
	db := openRepositoryTestDB(t)
	fx := seedCatalog(t, db)
	repo := NewCategoryRepository(db)

	categories, err := repo.ListActiveWithCounts(context.Background())
	if err != nil {
		t.Fatalf("list categories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("want 2 categories got %d", len(categories))
	}
	counts := map[uint]int64{}
	for _, c := range categories {
		counts[c.ID] = c.ProductCount
	}
	if counts[fx.Category.ID] != 2 {
		t.Fatalf("eletronicos want 2 products got %d", counts[fx.Category.ID])
	}
	if counts[fx.Home.ID] != 0 {
		t.Fatalf("inactive products should not be counted, got %d", counts[fx.Home.ID])
	}
}
