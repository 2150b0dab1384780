package main

import (
	"os"
	"syscall"
	"time"

	"github.com/bossshopp/internal/app"
	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/supervisor"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if len(cfg.Launcher.Processes) == 0 {
		stdLog.Fatalf("launcher.processes 未配置")
	}
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.Named("launcher")
	sup := supervisor.FromConfig(&cfg.Launcher, log)
	health := app.NewHTTPService(cfg.Launcher.Listen, supervisor.NewHealthEngine(sup)).WithName("launcher-health")

	// 停止宽限期按进程数累加，保证逐个 SIGTERM/SIGKILL 能完成
	grace := time.Duration(cfg.Launcher.StopGraceSeconds) * time.Second
	shutdown := time.Duration(len(cfg.Launcher.Processes)+1) * (grace + time.Second)

	log.Infow("launcher_start", "listen", cfg.Launcher.Listen, "processes", len(cfg.Launcher.Processes))
	runner := app.NewRunner(sup, health)
	if err := app.RunWithOptions(runner, app.Options{
		Config:          cfg,
		Logger:          log,
		Signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		ShutdownTimeout: shutdown,
	}); err != nil {
		stdLog.Fatalf("launcher 运行失败: %v", err)
	}
}
