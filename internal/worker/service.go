package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/queue"

	"github.com/hibiken/asynq"
)

// Service asynq 消费服务，附带订单超时清扫
type Service struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper *Sweeper
}

// NewService 创建消费服务；队列未启用时报错
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil || consumer.Container == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	svc := &Service{server: asynq.NewServer(opt, serverCfg), mux: mux}
	if consumer.OrderService != nil {
		svc.sweeper = NewSweeper(consumer.OrderService, 0, 0)
	}
	return svc, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动消费并阻塞到 ctx 结束；信号由上层 Runner 统一处理
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	if s.sweeper != nil {
		go func() { _ = s.sweeper.Start(ctx) }()
	}
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务完成后关闭
func (s *Service) Stop(context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}
