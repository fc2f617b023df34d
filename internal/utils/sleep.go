package utils

import (
	"context"
	"time"
)

// SleepFunc 可以在测试里替换成不真正等待的实现。返回 false 表示 ctx 已取消。
type SleepFunc func(ctx context.Context, d time.Duration) bool

func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
