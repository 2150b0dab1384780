package worker

import (
	"context"
	"errors"

	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/provider"
	"github.com/bossshopp/internal/queue"
	"github.com/bossshopp/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
	mux.HandleFunc(queue.TaskLowStockAlert, c.handleLowStockAlert)
}

func (c *Consumer) handleOrderTimeoutCancel(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.Decode[queue.OrderTimeoutCancelPayload](task)
	if err != nil {
		logger.Warnw("worker_order_timeout_cancel_decode_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	cancelled, err := c.OrderService.CancelIfPending(ctx, payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if !cancelled {
		logger.Debugw("worker_order_timeout_cancel_skip_not_pending", "order_id", payload.OrderID)
	}
	return nil
}

func (c *Consumer) handleLowStockAlert(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_low_stock_alert_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.Decode[queue.LowStockAlertPayload](task)
	if err != nil {
		logger.Warnw("worker_low_stock_alert_decode_failed", "error", err)
		return err
	}
	if payload.ProductID == 0 {
		logger.Debugw("worker_low_stock_alert_skip_invalid_payload", "product_id", payload.ProductID)
		return nil
	}
	if c.CatalogService == nil {
		logger.Warnw("worker_low_stock_alert_skip_catalog_service_nil", "product_id", payload.ProductID)
		return nil
	}
	err = c.CatalogService.RecordLowStockAlert(ctx, payload.ProductID, payload.StockQuantity, payload.Threshold)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrNotFound):
		logger.Debugw("worker_low_stock_alert_skip_product_not_found", "product_id", payload.ProductID)
		return nil
	default:
		logger.Warnw("worker_low_stock_alert_failed", "product_id", payload.ProductID, "error", err)
		return err
	}
}
