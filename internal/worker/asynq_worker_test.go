package worker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/constants"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/provider"
	"github.com/bossshopp/internal/queue"
	"github.com/bossshopp/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func newWorkerConsumer(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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

	cfg := &config.Config{}
	cfg.Database.StatementTimeoutSeconds = 5
	cfg.UserJWT = config.JWTConfig{SecretKey: "worker-test-secret", ExpireHours: 1}
	cfg.Catalog = config.CatalogConfig{LowStockThreshold: 5}
	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	t.Cleanup(container.Close)
	return NewConsumer(container), db
}

func seedWorkerProduct(t *testing.T, db *gorm.DB, stock int) models.Product {
	t.Helper()
	category := models.Category{Name: "Games", Slug: "games", IsActive: true}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	sku := "GAM-CON-001"
	product := models.Product{
		CategoryID:    category.ID,
		Name:          "Console de Videogame",
		Price:         models.MustMoney("2250.00"),
		StockQuantity: stock,
		SKU:           &sku,
		IsActive:      true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestHandleOrderTimeoutCancelRestoresStock(t *testing.T) {
	consumer, db := newWorkerConsumer(t)
	product := seedWorkerProduct(t, db, 10)
	userID, err := consumer.UserService.Create(context.Background(), service.CreateUserInput{
		Name:     "Cliente",
		Email:    "cliente@example.com",
		Password: "segredo1",
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	order, err := consumer.OrderService.Create(context.Background(), service.CreateOrderInput{
		UserID:        userID,
		Items:         []service.OrderLineInput{{ProductID: product.ID, Quantity: 3}},
		PaymentMethod: constants.PaymentMethodPix,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	task, err := queue.NewTask(queue.OrderTimeoutCancelPayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderTimeoutCancel(context.Background(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", stored.Status)
	}
	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if reloaded.StockQuantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", reloaded.StockQuantity)
	}

	// 已取消的订单再次投递时忽略
	if err := consumer.handleOrderTimeoutCancel(context.Background(), task); err != nil {
		t.Fatalf("second delivery should be ignored, got %v", err)
	}
}

func TestHandleOrderTimeoutCancelBadPayload(t *testing.T) {
	consumer, _ := newWorkerConsumer(t)
	if err := consumer.handleOrderTimeoutCancel(context.Background(), asynq.NewTask(queue.TaskOrderTimeoutCancel, []byte("{"))); err == nil {
		t.Fatalf("expected unmarshal error")
	}
	if err := consumer.handleOrderTimeoutCancel(context.Background(), asynq.NewTask(queue.TaskOrderTimeoutCancel, []byte(`{"order_id":0}`))); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}
}

func TestHandleLowStockAlertRecordsMovement(t *testing.T) {
	consumer, db := newWorkerConsumer(t)
	product := seedWorkerProduct(t, db, 2)

	task, err := queue.NewTask(queue.LowStockAlertPayload{
		ProductID:     product.ID,
		ProductName:   product.Name,
		StockQuantity: 2,
		Threshold:     5,
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleLowStockAlert(context.Background(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}

	var movements []models.StockMovement
	if err := db.Where("product_id = ?", product.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements failed: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if movements[0].Quantity != 0 || movements[0].MovementType != models.StockMovementAdjustment {
		t.Fatalf("unexpected movement: %+v", movements[0])
	}

	missing, _ := queue.NewTask(queue.LowStockAlertPayload{ProductID: product.ID + 100})
	if err := consumer.handleLowStockAlert(context.Background(), missing); err != nil {
		t.Fatalf("missing product should be skipped, got %v", err)
	}
}

func TestRegisterNilSafe(t *testing.T) {
	var consumer *Consumer
	consumer.Register(asynq.NewServeMux())
	(&Consumer{}).Register(nil)
}
