package models

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection 数据库不可达或认证失败
	ErrConnection = errors.New("database connection failed")
	// ErrConfiguration 数据库配置缺失或非法
	ErrConfiguration = errors.New("database configuration invalid")
)

// ConnectionError 连接错误（携带驱动与底层原因）
type ConnectionError struct {
	Driver string
	Err    error
}

// NewConnectionError 创建连接错误
func NewConnectionError(driver string, err error) *ConnectionError {
	return &ConnectionError{Driver: driver, Err: err}
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrConnection.Error(), e.Driver)
	}
	return fmt.Sprintf("%s: %s: %v", ErrConnection.Error(), e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrConnection) 成立
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// ConfigurationError 配置错误（Key 为出错的配置项）
type ConfigurationError struct {
	Key string
	Err error
}

// NewConfigurationError 创建配置错误
func NewConfigurationError(key string, err error) *ConfigurationError {
	return &ConfigurationError{Key: key, Err: err}
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Key)
	}
	return fmt.Sprintf("%s: %s: %v", ErrConfiguration.Error(), e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrConfiguration) 成立
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
