package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	DefaultQueue = constants.QueueDefault

	defaultConcurrency       = 10
	lowStockAlertDedupWindow = 10 * time.Minute
)

// Client 投递端；未启用时所有 Enqueue 直接返回 nil
type Client struct {
	inner *asynq.Client
	queue string
}

// NewClient 创建投递端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{queue: DefaultQueue}
	if cfg == nil || !cfg.Enabled {
		return c, nil
	}
	c.inner = asynq.NewClient(redisOpt(cfg))
	return c, nil
}

// Enabled 是否真正投递
func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

// Close 释放连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// enqueue 统一投递入口；重复任务视为成功
func (c *Client) enqueue(payload Payload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewTask(payload)
	if err != nil {
		return err
	}
	opts = append([]asynq.Option{asynq.Queue(c.queue)}, opts...)
	_, err = c.inner.Enqueue(task, opts...)
	if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// EnqueueOrderTimeoutCancel 延迟 delay 后尝试取消订单
func (c *Client) EnqueueOrderTimeoutCancel(payload OrderTimeoutCancelPayload, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	return c.enqueue(payload, asynq.ProcessIn(delay), asynq.TaskID(payload.taskID()))
}

// EnqueueLowStockAlert 同一商品在去重窗口内只告警一次
func (c *Client) EnqueueLowStockAlert(payload LowStockAlertPayload) error {
	return c.enqueue(payload, asynq.Unique(lowStockAlertDedupWindow))
}

// BuildServerConfig 消费端连接与并发配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{DefaultQueue: 1},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
