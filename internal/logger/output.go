package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDirName  = "logs"
	defaultLogFilename = "bossshopp.log"
)

// Options 文件输出与滚动策略，零值字段取默认
type Options struct {
	Level      string
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Console    bool
}

func (o Options) rotation(path string) *lumberjack.Logger {
	r := &lumberjack.Logger{Filename: path, MaxSize: 100, MaxBackups: 7, MaxAge: 30, Compress: o.Compress}
	if o.MaxSizeMB > 0 {
		r.MaxSize = o.MaxSizeMB
	}
	if o.MaxBackups > 0 {
		r.MaxBackups = o.MaxBackups
	}
	if o.MaxAgeDays > 0 {
		r.MaxAge = o.MaxAgeDays
	}
	return r
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func consoleCore(level zapcore.LevelEnabler, color bool) zapcore.Core {
	cfg := encoderConfig()
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stdout), level)
}

// releaseCore 文件不可写时整体退回 stdout JSON
func releaseCore(level zapcore.LevelEnabler, options Options) zapcore.Core {
	path, err := resolveLogFilePath(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: file output unavailable, using stdout: %v\n", err)
		return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.Lock(os.Stdout), level)
	}
	file := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(options.rotation(path)), level)
	if !options.Console {
		return file
	}
	return zapcore.NewTee(file, consoleCore(level, false))
}

// resolveLogFilePath 默认 ./logs/bossshopp.log；创建目录并试写一次
func resolveLogFilePath(options Options) (string, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir: %w", err)
		}
		dir = filepath.Join(wd, defaultLogDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	name := strings.TrimSpace(options.Filename)
	if name == "" {
		name = defaultLogFilename
	}
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}
	return path, f.Close()
}
