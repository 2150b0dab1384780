package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bossshopp/internal/cache"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/repository"
)

const (
	reportCacheTTL        = 45 * time.Second
	newUserWindow         = 30 * 24 * time.Hour
	defaultTopProducts    = 10
	defaultDailySalesDays = 30
)

// SalesStatistics 销售统计
type SalesStatistics struct {
	TotalOrders   int64        `json:"total_orders"`
	TotalRevenue  models.Money `json:"total_revenue"`
	AverageTicket models.Money `json:"average_ticket"`
	MinOrder      models.Money `json:"min_order"`
	MaxOrder      models.Money `json:"max_order"`
}

// TopProduct 销量排行项
type TopProduct struct {
	ProductID    uint         `json:"product_id"`
	Name         string       `json:"name"`
	Price        models.Money `json:"price"`
	TotalSold    int64        `json:"total_sold"`
	TotalRevenue models.Money `json:"total_revenue"`
}

// UserStatistics 用户统计
type UserStatistics struct {
	TotalUsers  int64 `json:"total_users"`
	NewUsers30d int64 `json:"new_users_30d"`
	ActiveUsers int64 `json:"active_users"`
}

// DailySales 日销售
type DailySales struct {
	Day          string       `json:"day"`
	TotalOrders  int64        `json:"total_orders"`
	TotalRevenue models.Money `json:"total_revenue"`
}

// TableCount 表行数
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// ReportService 报表服务（只读）
type ReportService struct {
	repo    repository.ReportRepository
	timeout time.Duration
}

// NewReportService 创建报表服务
func NewReportService(repo repository.ReportRepository, timeout time.Duration) *ReportService {
	return &ReportService{repo: repo, timeout: timeout}
}

// SalesStatistics 统计区间内已发货/已签收订单
func (s *ReportService) SalesStatistics(ctx context.Context, from, to *time.Time) (SalesStatistics, error) {
	key := fmt.Sprintf("report:sales:%s:%s", formatReportBound(from), formatReportBound(to))
	var out SalesStatistics
	if s.readCache(ctx, key, &out) {
		return out, nil
	}
	queryCtx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	row, err := s.repo.SalesStatistics(queryCtx, from, to)
	if err != nil {
		return SalesStatistics{}, err
	}
	out = SalesStatistics{
		TotalOrders:   row.TotalOrders,
		TotalRevenue:  row.TotalRevenue,
		AverageTicket: row.AverageTicket,
		MinOrder:      row.MinOrder,
		MaxOrder:      row.MaxOrder,
	}
	s.writeCache(ctx, key, out)
	return out, nil
}

// TopProducts 销量最高的商品
func (s *ReportService) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultTopProducts
	}
	key := fmt.Sprintf("report:top_products:%d", limit)
	var out []TopProduct
	if s.readCache(ctx, key, &out) {
		return out, nil
	}
	queryCtx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	rows, err := s.repo.TopProducts(queryCtx, limit)
	if err != nil {
		return nil, err
	}
	out = make([]TopProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopProduct{
			ProductID:    row.ProductID,
			Name:         row.Name,
			Price:        row.Price,
			TotalSold:    row.TotalSold,
			TotalRevenue: row.TotalRevenue,
		})
	}
	s.writeCache(ctx, key, out)
	return out, nil
}

// UserStatistics 用户总数、近 30 天新增与启用数
func (s *ReportService) UserStatistics(ctx context.Context) (UserStatistics, error) {
	const key = "report:users"
	var out UserStatistics
	if s.readCache(ctx, key, &out) {
		return out, nil
	}
	queryCtx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	row, err := s.repo.UserStatistics(queryCtx, time.Now().Add(-newUserWindow))
	if err != nil {
		return UserStatistics{}, err
	}
	out = UserStatistics{
		TotalUsers:  row.TotalUsers,
		NewUsers30d: row.NewUsers,
		ActiveUsers: row.ActiveUsers,
	}
	s.writeCache(ctx, key, out)
	return out, nil
}

// DailySales 最近 days 天的日销售（日期倒序）
func (s *ReportService) DailySales(ctx context.Context, days int) ([]DailySales, error) {
	if days <= 0 || days > 366 {
		days = defaultDailySalesDays
	}
	key := fmt.Sprintf("report:daily:%d", days)
	var out []DailySales
	if s.readCache(ctx, key, &out) {
		return out, nil
	}
	now := time.Now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
	queryCtx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	rows, err := s.repo.DailySales(queryCtx, since)
	if err != nil {
		return nil, err
	}
	out = make([]DailySales, 0, len(rows))
	for _, row := range rows {
		out = append(out, DailySales{Day: row.Day, TotalOrders: row.TotalOrders, TotalRevenue: row.TotalRevenue})
	}
	s.writeCache(ctx, key, out)
	return out, nil
}

// TableCounts 各表行数（连通性检查用，不缓存）
func (s *ReportService) TableCounts(ctx context.Context) ([]TableCount, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	rows, err := s.repo.TableCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TableCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, TableCount{Table: row.Table, Rows: row.Rows})
	}
	return out, nil
}

func (s *ReportService) readCache(ctx context.Context, key string, dest interface{}) bool {
	hit, err := cache.GetJSON(ctx, key, dest)
	if err != nil {
		logger.Warnw("report_cache_read_failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *ReportService) writeCache(ctx context.Context, key string, value interface{}) {
	if err := cache.SetJSON(ctx, key, value, reportCacheTTL); err != nil {
		logger.Warnw("report_cache_write_failed", "key", key, "error", err)
	}
}

func formatReportBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("20060102T150405")
}
