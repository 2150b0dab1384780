package worker

import (
	"context"
	"time"

	"github.com/bossshopp/internal/logger"
)

const (
	defaultSweepInterval = 5 * time.Minute
	defaultSweepBatch    = 100
)

// PendingSweeper 批量取消超时待处理订单
type PendingSweeper interface {
	SweepStalePending(ctx context.Context, limit int) (int, error)
}

// Sweeper 周期性取消超时订单，兜底丢失或未投递的超时任务
type Sweeper struct {
	orders   PendingSweeper
	interval time.Duration
	batch    int
}

// NewSweeper 创建订单超时清扫器
func NewSweeper(orders PendingSweeper, interval time.Duration, batch int) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	return &Sweeper{orders: orders, interval: interval, batch: batch}
}

// Name 服务名称
func (s *Sweeper) Name() string {
	return "order-sweeper"
}

// Start 立即清扫一次，之后按间隔执行直至 ctx 结束
func (s *Sweeper) Start(ctx context.Context) error {
	if s == nil || s.orders == nil {
		<-ctx.Done()
		return nil
	}
	s.SweepOnce(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// Stop 随 Start 的 ctx 退出，无需额外处理
func (s *Sweeper) Stop(context.Context) error {
	return nil
}

// SweepOnce 执行一轮清扫，返回取消数量
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	cancelled, err := s.orders.SweepStalePending(ctx, s.batch)
	if err != nil {
		logger.Warnw("worker_stale_pending_sweep_failed", "error", err)
		return 0
	}
	if cancelled > 0 {
		logger.Infow("worker_stale_pending_swept", "cancelled", cancelled, "batch", s.batch)
	}
	return cancelled
}
