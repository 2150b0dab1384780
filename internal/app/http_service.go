package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPService 把 http.Server 适配为 Service；监听失败在 Start 中立即返回
type HTTPService struct {
	name   string
	server *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewHTTPService 创建 HTTP 服务，addr 为空时监听 :8080
func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	if addr == "" {
		addr = ":8080"
	}
	return &HTTPService{
		name: "http",
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       time.Minute,
		},
	}
}

// WithName 覆盖服务名（同进程多个 HTTP 服务时区分日志）
func (s *HTTPService) WithName(name string) *HTTPService {
	if name != "" {
		s.name = name
	}
	return s
}

// Name 服务名
func (s *HTTPService) Name() string {
	return s.name
}

// Addr 实际监听地址，未启动时为配置地址
func (s *HTTPService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Start 监听并服务到 Stop 被调用；请求 context 派生自 ctx
func (s *HTTPService) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.server.BaseContext = func(net.Listener) context.Context { return ctx }
	if err := s.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 等待在途请求结束，ctx 到期后强制关闭
func (s *HTTPService) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return s.server.Close()
	}
	return nil
}
