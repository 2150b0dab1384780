package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bossshopp/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(models.SQLiteForeignKeysDSN(dsn)), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type catalogFixture struct {
	Category models.Category
	Home     models.Category
	Phone    models.Product
	Laptop   models.Product
	Hidden   models.Product
	User     models.User
}

func strPtr(v string) *string { return &v }

func seedCatalog(t *testing.T, db *gorm.DB) catalogFixture {
	t.Helper()
	fx := catalogFixture{
		Category: models.Category{Name: "Eletrônicos", Slug: "eletronicos", SortOrder: 2, IsActive: true},
		Home:     models.Category{Name: "Casa", Slug: "casa", SortOrder: 3, IsActive: true},
	}
	mustCreate(t, db, &fx.Category)
	mustCreate(t, db, &fx.Home)

	fx.Phone = models.Product{
		CategoryID: fx.Category.ID, Name: "Smartphone Premium", Description: "Câmera de 108MP e 5G",
		Price: models.MustMoney("25.00"), StockQuantity: 10, SKU: strPtr("ELE-SMT-001"), IsActive: true, IsFeatured: true,
	}
	fx.Laptop = models.Product{
		CategoryID: fx.Category.ID, Name: "Notebook Ultrafino", Description: "Processador i7 e SSD 512GB",
		Price: models.MustMoney("50.00"), StockQuantity: 5, SKU: strPtr("ELE-NOT-001"), IsActive: true,
	}
	fx.Hidden = models.Product{
		CategoryID: fx.Home.ID, Name: "Sofá Confortável", Description: "Sofá de 3 lugares",
		Price: models.MustMoney("1020.00"), StockQuantity: 10, SKU: strPtr("CAS-SOF-001"), IsActive: true,
	}
	mustCreate(t, db, &fx.Phone)
	mustCreate(t, db, &fx.Laptop)
	mustCreate(t, db, &fx.Hidden)
	// is_active 带默认值，false 需在创建后单独更新
	if err := db.Model(&fx.Hidden).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}
	fx.Hidden.IsActive = false

	fx.User = models.User{Name: "João Silva", Email: "joao@example.com", PasswordHash: "x", IsActive: true}
	mustCreate(t, db, &fx.User)
	return fx
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T failed: %v", value, err)
	}
}
