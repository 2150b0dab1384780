package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/bossshopp/internal/config"

	"go.uber.org/zap"
)

const defaultStopGrace = 10 * time.Second

// Supervisor 按顺序启动托管进程，逆序停止
type Supervisor struct {
	processes    []*Process
	startupDelay time.Duration
	stopGrace    time.Duration
	log          *zap.SugaredLogger
}

// New 创建进程托管器
func New(specs []Spec, startupDelay, stopGrace time.Duration, log *zap.SugaredLogger) *Supervisor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if stopGrace <= 0 {
		stopGrace = defaultStopGrace
	}
	processes := make([]*Process, 0, len(specs))
	for _, spec := range specs {
		processes = append(processes, NewProcess(spec, log))
	}
	return &Supervisor{
		processes:    processes,
		startupDelay: startupDelay,
		stopGrace:    stopGrace,
		log:          log,
	}
}

// FromConfig 根据 launcher 配置构建
func FromConfig(cfg *config.LauncherConfig, log *zap.SugaredLogger) *Supervisor {
	specs := make([]Spec, 0, len(cfg.Processes))
	for _, item := range cfg.Processes {
		specs = append(specs, Spec{
			Name:          item.Name,
			Command:       item.Command,
			Args:          item.Args,
			Dir:           item.Dir,
			Env:           item.Env,
			HealthURL:     item.HealthURL,
			HealthTimeout: time.Duration(item.HealthTimeoutSeconds) * time.Second,
		})
	}
	return New(specs,
		time.Duration(cfg.StartupDelaySeconds)*time.Second,
		time.Duration(cfg.StopGraceSeconds)*time.Second,
		log)
}

// Name 服务名称
func (s *Supervisor) Name() string {
	return "supervisor"
}

// Start 启动全部进程并阻塞，任一进程退出即返回错误
func (s *Supervisor) Start(ctx context.Context) error {
	if len(s.processes) == 0 {
		return fmt.Errorf("no processes configured")
	}
	for i, proc := range s.processes {
		if i > 0 && s.startupDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.startupDelay):
			}
		}
		if err := proc.Start(); err != nil {
			return err
		}
		if err := proc.WaitHealthy(ctx); err != nil {
			return err
		}
	}
	s.log.Infow("supervisor_all_started", "count", len(s.processes))

	exited := make(chan string, len(s.processes))
	for _, proc := range s.processes {
		go func(p *Process) {
			select {
			case <-p.Done():
				exited <- p.Name()
			case <-ctx.Done():
			}
		}(proc)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case name := <-exited:
		return fmt.Errorf("%s: %w", name, ErrExited)
	}
}

// Stop 逆序停止全部进程
func (s *Supervisor) Stop(ctx context.Context) error {
	var firstErr error
	for i := len(s.processes) - 1; i >= 0; i-- {
		proc := s.processes[i]
		if err := proc.Stop(ctx, s.stopGrace); err != nil {
			s.log.Errorw("supervisor_stop_failed", "process", proc.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Snapshots 全部进程状态
func (s *Supervisor) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(s.processes))
	for _, proc := range s.processes {
		out = append(out, proc.Snapshot())
	}
	return out
}

// Healthy 全部进程均处于运行状态
func (s *Supervisor) Healthy() bool {
	for _, proc := range s.processes {
		if proc.Snapshot().Status != StatusRunning {
			return false
		}
	}
	return len(s.processes) > 0
}
