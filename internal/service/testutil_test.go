package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.StatementTimeoutSeconds = 5
	cfg.UserJWT = config.JWTConfig{SecretKey: "test-secret", ExpireHours: 1}
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 6}
	cfg.Order.PendingTimeoutMinutes = 30
	cfg.Catalog = config.CatalogConfig{LowStockThreshold: 5, SearchDefaultLimit: 20, SearchMaxLimit: 100}
	return cfg
}

// serviceHarness 基于同一个 sqlite 库装配的服务集合
type serviceHarness struct {
	DB       *gorm.DB
	Users    *UserService
	Catalog  *CatalogService
	Cart     *CartService
	Favorite *FavoriteService
	Address  *AddressService
	Orders   *OrderService
	Reviews  *ReviewService
	Settings *SettingService
	Reports  *ReportService
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()
	db := openServiceTestDB(t)
	cfg := testConfig()
	timeout := cfg.Database.StatementTimeout()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	reportRepo := repository.NewReportRepository(db)

	settings := NewSettingService(settingRepo, timeout)
	return &serviceHarness{
		DB:       db,
		Users:    NewUserService(cfg, userRepo),
		Catalog:  NewCatalogService(cfg, categoryRepo, productRepo, movementRepo),
		Cart:     NewCartService(cartRepo, productRepo, settings, timeout),
		Favorite: NewFavoriteService(favoriteRepo, productRepo, timeout),
		Address:  NewAddressService(addressRepo, timeout),
		Orders: NewOrderService(cfg, OrderServiceOptions{
			OrderRepo:      orderRepo,
			ProductRepo:    productRepo,
			CartRepo:       cartRepo,
			AddressRepo:    addressRepo,
			MovementRepo:   movementRepo,
			SettingService: settings,
		}),
		Reviews:  NewReviewService(reviewRepo, productRepo, orderRepo, timeout),
		Settings: settings,
		Reports:  NewReportService(reportRepo, timeout),
	}
}

type shopFixture struct {
	Category models.Category
	Phone    models.Product
	Laptop   models.Product
	User     models.User
	Other    models.User
}

func strPtr(v string) *string { return &v }

func seedShop(t *testing.T, db *gorm.DB) shopFixture {
	t.Helper()
	fx := shopFixture{
		Category: models.Category{Name: "Eletrônicos", Slug: "eletronicos", IsActive: true},
	}
	mustCreate(t, db, &fx.Category)
	fx.Phone = models.Product{
		CategoryID: fx.Category.ID, Name: "Smartphone Premium", Price: models.MustMoney("25.00"),
		StockQuantity: 10, SKU: strPtr("ELE-SMT-001"), IsActive: true,
	}
	fx.Laptop = models.Product{
		CategoryID: fx.Category.ID, Name: "Notebook Ultrafino", Price: models.MustMoney("50.00"),
		StockQuantity: 5, SKU: strPtr("ELE-NOT-001"), IsActive: true,
	}
	mustCreate(t, db, &fx.Phone)
	mustCreate(t, db, &fx.Laptop)

	fx.User = models.User{Name: "Maria Santos", Email: "maria@example.com", PasswordHash: "x", IsActive: true}
	fx.Other = models.User{Name: "Pedro Costa", Email: "pedro@example.com", PasswordHash: "x", IsActive: true}
	mustCreate(t, db, &fx.User)
	mustCreate(t, db, &fx.Other)
	return fx
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T failed: %v", value, err)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count %T failed: %v", model, err)
	}
	return count
}
