package redis

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

//go:embed rate_limit.lua
var rateLimitLua string

var rateLimitScript = redis.NewScript(rateLimitLua)

// RateLimiter 固定窗口限流器
//
// INCR和过期时间在同一个Lua脚本里设置，计数器随窗口过期自动清理。
// 没有过期时间的计数器（PTTL<0）会被补上窗口过期时间。
// Key: meatshop:ratelimit:{subject}
type RateLimiter struct {
	client *redis.Client
	window time.Duration
}

// NewRateLimiter 创建限流器
func NewRateLimiter(client *redis.Client, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, window: window}
}

// Allow 记录一次请求，返回是否放行以及当前窗口剩余时间
func (l *RateLimiter) Allow(ctx context.Context, subject string, limit int) (bool, time.Duration, error) {
	key := "meatshop:ratelimit:" + subject

	result, err := rateLimitScript.Run(ctx, l.client, []string{key}, l.window.Milliseconds()).Result()
	if err != nil {
		return false, 0, apperrors.WithCause(apperrors.ErrRedisError, err)
	}

	count, ttl, err := parseWindow(result)
	if err != nil {
		return false, 0, apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return count <= int64(limit), ttl, nil
}

// parseWindow 解析脚本返回的 {计数, 剩余毫秒}
func parseWindow(result interface{}) (int64, time.Duration, error) {
	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("限流脚本返回值类型错误: %T", result)
	}
	count, ok := values[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("限流计数类型错误: %T", values[0])
	}
	ttl, ok := values[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("窗口剩余时间类型错误: %T", values[1])
	}
	return count, time.Duration(ttl) * time.Millisecond, nil
}
