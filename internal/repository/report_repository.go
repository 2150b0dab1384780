package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bossshopp/internal/constants"
	"github.com/bossshopp/internal/models"

	"gorm.io/gorm"
)

// ReportRepository 报表聚合查询接口
// 说明：只读聚合，不承载业务规则。
type ReportRepository interface {
	SalesStatistics(ctx context.Context, from, to *time.Time) (SalesStatisticsRow, error)
	TopProducts(ctx context.Context, limit int) ([]TopProductRow, error)
	UserStatistics(ctx context.Context, since time.Time) (UserStatisticsRow, error)
	DailySales(ctx context.Context, since time.Time) ([]DailySalesRow, error)
	TableCounts(ctx context.Context) ([]TableCountRow, error)
}

// SalesStatisticsRow 销售统计原始结果
type SalesStatisticsRow struct {
	TotalOrders   int64
	TotalRevenue  models.Money
	AverageTicket models.Money
	MinOrder      models.Money
	MaxOrder      models.Money
}

// TopProductRow 商品销量排行
type TopProductRow struct {
	ProductID    uint
	Name         string
	Price        models.Money
	TotalSold    int64
	TotalRevenue models.Money
}

// UserStatisticsRow 用户统计
type UserStatisticsRow struct {
	TotalUsers  int64
	NewUsers    int64
	ActiveUsers int64
}

// DailySalesRow 日销售
type DailySalesRow struct {
	Day          string
	TotalOrders  int64
	TotalRevenue models.Money
}

// TableCountRow 表行数
type TableCountRow struct {
	Table string
	Rows  int64
}

// GormReportRepository GORM 报表实现
type GormReportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建报表仓库
func NewReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

func (r *GormReportRepository) countedOrders(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("orders.status IN ?", constants.SalesCountedStatuses)
}

// SalesStatistics 已发货/已签收订单金额统计
func (r *GormReportRepository) SalesStatistics(ctx context.Context, from, to *time.Time) (SalesStatisticsRow, error) {
	result := SalesStatisticsRow{}
	query := r.countedOrders(ctx)
	if from != nil {
		query = query.Where("orders.created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("orders.created_at <= ?", *to)
	}
	err := query.Select(`
			COUNT(*) as total_orders,
			COALESCE(SUM(total_amount), 0) as total_revenue,
			COALESCE(AVG(total_amount), 0) as average_ticket,
			COALESCE(MIN(total_amount), 0) as min_order,
			COALESCE(MAX(total_amount), 0) as max_order
		`).
		Scan(&result).Error
	return result, err
}

// TopProducts 销量最高的商品
func (r *GormReportRepository) TopProducts(ctx context.Context, limit int) ([]TopProductRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows := make([]TopProductRow, 0)
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select(`
			products.id as product_id,
			products.name as name,
			products.price as price,
			COALESCE(SUM(order_items.quantity), 0) as total_sold,
			COALESCE(SUM(order_items.total_price), 0) as total_revenue
		`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.status IN ?", constants.SalesCountedStatuses).
		Group("products.id, products.name, products.price").
		Order("total_sold DESC, total_revenue DESC, products.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UserStatistics 用户总数、新用户数与启用用户数
func (r *GormReportRepository) UserStatistics(ctx context.Context, since time.Time) (UserStatisticsRow, error) {
	result := UserStatisticsRow{}
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{})
	}
	if err := base().Count(&result.TotalUsers).Error; err != nil {
		return result, err
	}
	if err := base().Where("created_at >= ?", since).Count(&result.NewUsers).Error; err != nil {
		return result, err
	}
	if err := base().Where("is_active = ?", true).Count(&result.ActiveUsers).Error; err != nil {
		return result, err
	}
	return result, nil
}

// DailySales 按日聚合已计入销售的订单
func (r *GormReportRepository) DailySales(ctx context.Context, since time.Time) ([]DailySalesRow, error) {
	dayExpr := dayExprByDialect(dbDialectName(r.db), "orders.created_at")
	rows := make([]DailySalesRow, 0)
	err := r.countedOrders(ctx).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total_orders, COALESCE(SUM(total_amount), 0) as total_revenue", dayExpr)).
		Where("orders.created_at >= ?", since).
		Group(dayExpr).
		Order("day DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TableCounts 各业务表行数
func (r *GormReportRepository) TableCounts(ctx context.Context) ([]TableCountRow, error) {
	tables := models.AllModels()
	result := make([]TableCountRow, 0, len(tables))
	for _, model := range tables {
		stmt := &gorm.Statement{DB: r.db}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}
		var count int64
		if err := r.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			return nil, err
		}
		result = append(result, TableCountRow{Table: stmt.Schema.Table, Rows: count})
	}
	return result, nil
}
