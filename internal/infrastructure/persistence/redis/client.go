package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/infrastructure/config"
)

// NewClient 连接Redis
// 会话、Token黑名单、订单缓存、限流计数共用一个连接池，key按前缀区分：
//
//	meatshop:session:{user_id}    登录会话（Hash）
//	meatshop:blacklist:{jti}      已登出的Token
//	meatshop:order:{order_no}     订单详情（加密JSON）
//	meatshop:ratelimit:{subject}  固定窗口计数
//
// 启动时Ping一次，连不上直接返回错误
func NewClient(cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	rc := cfg.Redis
	client := redis.NewClient(&redis.Options{
		Addr:         rc.Addr(),
		ClientName:   "meatshop",
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	})

	timeout := rc.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis %s 失败: %w", rc.Addr(), err)
	}

	log.Info("Redis连接成功", zap.String("addr", rc.Addr()), zap.Int("db", rc.DB), zap.Int("pool_size", rc.PoolSize))
	return client, nil
}
