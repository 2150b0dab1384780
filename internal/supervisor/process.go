package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Status 进程状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusStopped  Status = "stopped"
	StatusFailed   Status = "failed"
)

const (
	defaultHealthTimeout = 30 * time.Second
	healthPollInterval   = 500 * time.Millisecond
	healthRequestTimeout = 2 * time.Second
)

var (
	ErrNotStarted     = errors.New("process not started")
	ErrAlreadyStarted = errors.New("process already started")
	ErrExited         = errors.New("process exited")
	ErrHealthTimeout  = errors.New("health check timeout")
)

// Spec 托管进程定义
type Spec struct {
	Name          string
	Command       string
	Args          []string
	Dir           string
	Env           []string
	HealthURL     string
	HealthTimeout time.Duration
}

// Snapshot 进程状态快照
type Snapshot struct {
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	PID       int        `json:"pid"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Process 单个托管进程，独立进程组运行
type Process struct {
	spec Spec
	log  *zap.SugaredLogger

	mu        sync.Mutex
	cmd       *exec.Cmd
	status    Status
	pid       int
	startedAt *time.Time
	exitErr   error
	done      chan struct{}
}

// NewProcess 创建托管进程
func NewProcess(spec Spec, log *zap.SugaredLogger) *Process {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Process{spec: spec, log: log, status: StatusPending}
}

// Name 进程名
func (p *Process) Name() string {
	return p.spec.Name
}

// Start 启动进程并转发输出
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.status != StatusStopped && p.status != StatusFailed {
		return ErrAlreadyStarted
	}

	cmd := exec.Command(p.spec.Command, p.spec.Args...)
	cmd.Dir = p.spec.Dir
	cmd.Env = append(os.Environ(), p.spec.Env...)
	// 独立进程组，停止时整棵进程树一起终止
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	p.status = StatusStarting
	if err := cmd.Start(); err != nil {
		p.status = StatusFailed
		p.exitErr = err
		return fmt.Errorf("start %s: %w", p.spec.Name, err)
	}

	now := time.Now()
	p.cmd = cmd
	p.pid = cmd.Process.Pid
	p.startedAt = &now
	p.exitErr = nil
	p.done = make(chan struct{})
	p.log.Infow("process_started", "process", p.spec.Name, "pid", p.pid)

	var pipes sync.WaitGroup
	pipes.Add(2)
	go p.forward(&pipes, stdout, "stdout")
	go p.forward(&pipes, stderr, "stderr")

	done := p.done
	go func() {
		// 必须先读完输出再 Wait
		pipes.Wait()
		waitErr := cmd.Wait()
		p.mu.Lock()
		if p.status == StatusStopping {
			p.status = StatusStopped
		} else {
			p.status = StatusFailed
			if waitErr == nil {
				waitErr = ErrExited
			}
		}
		p.exitErr = waitErr
		p.mu.Unlock()
		p.log.Infow("process_exited", "process", p.spec.Name, "pid", cmd.Process.Pid, "error", waitErr)
		close(done)
	}()
	return nil
}

// forward 逐行转发输出，带 [name] 前缀
func (p *Process) forward(wg *sync.WaitGroup, r io.Reader, stream string) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	prefix := "[" + p.spec.Name + "] "
	for scanner.Scan() {
		line := prefix + scanner.Text()
		if stream == "stderr" {
			p.log.Warn(line)
			continue
		}
		p.log.Info(line)
	}
	if err := scanner.Err(); err != nil {
		p.log.Debugw("process_output_closed", "process", p.spec.Name, "stream", stream, "error", err)
	}
}

// Done 进程退出后关闭
func (p *Process) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// WaitHealthy 轮询健康地址直至就绪；未配置时视为就绪
func (p *Process) WaitHealthy(ctx context.Context) error {
	done := p.Done()
	if done == nil {
		return ErrNotStarted
	}
	if p.spec.HealthURL == "" {
		p.markRunning()
		return nil
	}
	timeout := p.spec.HealthTimeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Timeout: healthRequestTimeout}
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()
	for {
		if probe(ctx, client, p.spec.HealthURL) {
			p.markRunning()
			p.log.Infow("process_healthy", "process", p.spec.Name, "url", p.spec.HealthURL)
			return nil
		}
		select {
		case <-done:
			return fmt.Errorf("%s: %w", p.spec.Name, ErrExited)
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%s: %w", p.spec.Name, ErrHealthTimeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func probe(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (p *Process) markRunning() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusStarting {
		p.status = StatusRunning
	}
}

// Stop 向进程组发送 SIGTERM，宽限期后 SIGKILL
func (p *Process) Stop(ctx context.Context, grace time.Duration) error {
	p.mu.Lock()
	if p.cmd == nil || p.done == nil {
		p.mu.Unlock()
		return nil
	}
	done := p.done
	select {
	case <-done:
		p.mu.Unlock()
		return nil
	default:
	}
	p.status = StatusStopping
	pgid := p.pid
	p.mu.Unlock()

	p.log.Infow("process_stopping", "process", p.spec.Name, "pid", pgid)
	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		p.log.Warnw("process_sigterm_failed", "process", p.spec.Name, "error", err)
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	p.log.Warnw("process_force_kill", "process", p.spec.Name, "pid", pgid)
	if err := syscall.Kill(-pgid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot 当前状态
func (p *Process) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := Snapshot{
		Name:      p.spec.Name,
		Status:    p.status,
		PID:       p.pid,
		StartedAt: p.startedAt,
	}
	if p.exitErr != nil && p.status == StatusFailed {
		snap.Error = p.exitErr.Error()
	}
	return snap
}
