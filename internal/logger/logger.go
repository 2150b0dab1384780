package logger

import (
	"log"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	current  atomic.Pointer[zap.Logger]
	fallback = zap.New(consoleCore(zapcore.InfoLevel, false), zap.AddCaller(), zap.AddCallerSkip(1))
)

// Init 按运行模式构建全局日志并接管 zap 全局实例
func Init(mode string, options Options) *zap.Logger {
	l := New(mode, options)
	current.Store(l)
	zap.ReplaceGlobals(l)
	return l
}

// New debug 模式为彩色控制台；其余模式写 JSON 滚动文件，Console 为真时另抄一份到 stdout
func New(mode string, options Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")
	level := resolveLevel(options.Level, debug)

	var core zapcore.Core
	if debug {
		core = consoleCore(level, true)
	} else {
		core = releaseCore(level, options)
	}
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// Z 全局 logger，未 Init 时退回 stdout
func Z() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return fallback
}

func S() *zap.SugaredLogger { return Z().Sugar() }

// SW 携带固定字段的 sugared logger
func SW(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return S()
	}
	return S().With(kv...)
}

// Named 组件子日志，如 supervisor、worker
func Named(name string) *zap.SugaredLogger {
	return Z().Named(strings.TrimSpace(name)).Sugar()
}

// StdLogger 供 gorm 等只接受 *log.Logger 的组件使用
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

// Sync 退出前刷盘
func Sync() { _ = Z().Sync() }

func Debugw(msg string, kv ...interface{}) { S().Debugw(msg, kv...) }
func Infow(msg string, kv ...interface{})  { S().Infow(msg, kv...) }
func Warnw(msg string, kv ...interface{})  { S().Warnw(msg, kv...) }
func Errorw(msg string, kv ...interface{}) { S().Errorw(msg, kv...) }

// resolveLevel 显式级别优先，非法值按模式回退
func resolveLevel(raw string, debug bool) zap.AtomicLevel {
	if lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(raw))); err == nil && strings.TrimSpace(raw) != "" {
		return zap.NewAtomicLevelAt(lvl)
	}
	if debug {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel)
}
