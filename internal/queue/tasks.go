package queue

import (
	"encoding/json"
	"fmt"

	"github.com/bossshopp/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
	TaskLowStockAlert      = constants.TaskLowStockAlert
)

// Payload 任务载荷，TaskType 决定投递的任务类型
type Payload interface {
	TaskType() string
}

// OrderTimeoutCancelPayload 待处理订单到期后取消
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// TaskType 任务类型
func (OrderTimeoutCancelPayload) TaskType() string { return TaskOrderTimeoutCancel }

// taskID 同一订单只保留一个超时任务
func (p OrderTimeoutCancelPayload) taskID() string {
	return fmt.Sprintf("order-timeout-%d", p.OrderID)
}

// LowStockAlertPayload 下单后库存跌破阈值
type LowStockAlertPayload struct {
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	StockQuantity int    `json:"stock_quantity"`
	Threshold     int    `json:"threshold"`
}

// TaskType 任务类型
func (LowStockAlertPayload) TaskType() string { return TaskLowStockAlert }

// NewTask 序列化载荷为 asynq 任务
func NewTask(payload Payload, opts ...asynq.Option) (*asynq.Task, error) {
	if payload == nil {
		return nil, fmt.Errorf("queue: nil payload")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("queue: encode %s: %w", payload.TaskType(), err)
	}
	return asynq.NewTask(payload.TaskType(), body, opts...), nil
}

// Decode 反序列化任务载荷，类型不符时报错
func Decode[T Payload](task *asynq.Task) (T, error) {
	var payload T
	if task == nil {
		return payload, fmt.Errorf("queue: nil task")
	}
	if task.Type() != payload.TaskType() {
		return payload, fmt.Errorf("queue: task type %q, want %q", task.Type(), payload.TaskType())
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("queue: decode %s: %w", task.Type(), err)
	}
	return payload, nil
}
