//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bossshopp/internal/constants"
	"github.com/bossshopp/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	all := models.AllModels()
	_ = db.Migrator().DropTable(all...)
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(all...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgresSearchUsesILike(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	fx := seedCatalog(t, db)
	repo := NewProductRepository(db)

	rows, err := repo.Search(context.Background(), "NOTEBOOK", 20)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != fx.Laptop.ID {
		t.Fatalf("search want laptop got %d rows", len(rows))
	}

	rows, err = repo.Search(context.Background(), "_", 20)
	if err != nil {
		t.Fatalf("search underscore failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("escaped underscore should not match, got %d", len(rows))
	}
}

func TestPostgresDailySalesAndExecutor(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	fx := seedCatalog(t, db)
	createTestOrder(t, db, fx.User.ID, constants.OrderStatusDelivered,
		models.OrderItem{ProductID: fx.Phone.ID, ProductName: fx.Phone.Name, Quantity: 1, UnitPrice: fx.Phone.Price})

	daily, err := NewReportRepository(db).DailySales(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("daily sales failed: %v", err)
	}
	if len(daily) != 1 || daily[0].TotalOrders != 1 {
		t.Fatalf("daily sales want 1 row with 1 order got %+v", daily)
	}

	exec := NewExecutor(db, 5*time.Second)
	res, err := exec.Execute(context.Background(),
		"UPDATE products SET stock_quantity = stock_quantity - ? WHERE id = ? AND stock_quantity >= ?", 1, fx.Phone.ID, 1)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if res.RowsAffected != 1 {
		t.Fatalf("execute want 1 row got %d", res.RowsAffected)
	}
}
