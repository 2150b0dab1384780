package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bossshopp/internal/constants"
	"github.com/bossshopp/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByIDAndUser(ctx context.Context, id, userID uint) (*models.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListByUser(ctx context.Context, filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(ctx context.Context, filter OrderListFilter) ([]models.Order, int64, error)
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]models.Order, error)
	TransitionStatus(ctx context.Context, id uint, from, to string, updates map[string]interface{}) (int64, error)
	UpdatePaymentStatus(ctx context.Context, id uint, status string) (int64, error)
	HasPurchased(ctx context.Context, userID, productID uint, statuses []string) (bool, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 执行事务
func (r *GormOrderRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *GormOrderRepository) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("ShippingAddress")
}

// itemCountSelect 附带订单项数量
const itemCountSelect = "orders.*, (SELECT COUNT(*) FROM order_items WHERE order_items.order_id = orders.id) AS item_count"

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("User", "Items", "ShippingAddress", "BillingAddress").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	return r.first(r.withDetails(r.db.WithContext(ctx)).Where("orders.id = ?", id))
}

// GetByIDAndUser 获取用户订单详情
func (r *GormOrderRepository) GetByIDAndUser(ctx context.Context, id, userID uint) (*models.Order, error) {
	return r.first(r.withDetails(r.db.WithContext(ctx)).Where("orders.id = ? AND orders.user_id = ?", id, userID))
}

// GetByOrderNumber 根据订单编号获取订单
func (r *GormOrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return r.first(r.withDetails(r.db.WithContext(ctx)).Where("orders.order_number = ?", orderNumber))
}

func (r *GormOrderRepository) first(query *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) filtered(ctx context.Context, filter OrderListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("orders.user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("orders.status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("orders.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("orders.created_at <= ?", *filter.CreatedTo)
	}
	return query
}

// ListByUser 用户订单列表（最新优先，附订单项数量）
func (r *GormOrderRepository) ListByUser(ctx context.Context, filter OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return []models.Order{}, 0, nil
	}
	return r.list(ctx, filter)
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(ctx context.Context, filter OrderListFilter) ([]models.Order, int64, error) {
	return r.list(ctx, filter)
}

func (r *GormOrderRepository) list(ctx context.Context, filter OrderListFilter) ([]models.Order, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	query := applyPagination(r.filtered(ctx, filter), filter.Page, filter.PageSize)
	if err := query.Select(itemCountSelect).
		Order("orders.created_at DESC, orders.id DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListStalePending 早于指定时间仍未处理的订单
func (r *GormOrderRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", constants.OrderStatusPending, before).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// TransitionStatus 仅在当前状态为 from 时更新，返回影响行数
func (r *GormOrderRepository) TransitionStatus(ctx context.Context, id uint, from, to string, updates map[string]interface{}) (int64, error) {
	fields := make(map[string]interface{}, len(updates)+1)
	for key, value := range updates {
		fields[key] = value
	}
	fields["status"] = to
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// UpdatePaymentStatus 更新支付状态
func (r *GormOrderRepository) UpdatePaymentStatus(ctx context.Context, id uint, status string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("payment_status", status)
	return result.RowsAffected, result.Error
}

// HasPurchased 用户是否存在包含该商品且状态命中的订单
func (r *GormOrderRepository) HasPurchased(ctx context.Context, userID, productID uint, statuses []string) (bool, error) {
	if userID == 0 || productID == 0 || len(statuses) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status IN ?", userID, productID, statuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
