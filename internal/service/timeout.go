package service

import (
	"context"
	"time"
)

// withStatementTimeout 为单次业务操作设置语句超时，timeout<=0 时不限制
func withStatementTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
