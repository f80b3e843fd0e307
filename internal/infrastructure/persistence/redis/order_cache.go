package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/meatshop/internal/domain/order"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

// PayloadCipher 缓存内容加密（*crypt.Cipher实现）
// 订单详情含收货手机号和地址，缓存中同样不落明文
type PayloadCipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(encoded string) (string, error)
}

// OrderCache 订单详情缓存(Cache-Aside)
// 查询时先查缓存，未命中再查数据库并回填；订单状态变化后删除缓存。
// Key: meatshop:order:{order_no}
type OrderCache struct {
	client *redis.Client
	cipher PayloadCipher
	ttl    time.Duration
}

// NewOrderCache 创建订单缓存
func NewOrderCache(client *redis.Client, cipher PayloadCipher, ttl time.Duration) *OrderCache {
	return &OrderCache{client: client, cipher: cipher, ttl: ttl}
}

func orderKey(orderNo string) string {
	return "meatshop:order:" + orderNo
}

// Get 读取缓存，未命中返回(nil, nil)
func (c *OrderCache) Get(ctx context.Context, orderNo string) (*order.Order, error) {
	val, err := c.client.Get(ctx, orderKey(orderNo)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.WithCause(apperrors.ErrRedisError, err)
	}

	plain, err := c.cipher.Decrypt(val)
	if err != nil {
		// 密钥轮换后旧缓存无法解密，按未命中处理
		_ = c.client.Del(ctx, orderKey(orderNo)).Err()
		return nil, nil
	}

	var o order.Order
	if err := json.Unmarshal([]byte(plain), &o); err != nil {
		return nil, apperrors.Wrap(err, "订单缓存反序列化失败")
	}
	return &o, nil
}

// Set 写入缓存
func (c *OrderCache) Set(ctx context.Context, o *order.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return apperrors.Wrap(err, "订单缓存序列化失败")
	}
	val, err := c.cipher.Encrypt(string(data))
	if err != nil {
		return apperrors.Wrap(err, "订单缓存加密失败")
	}
	if err := c.client.Set(ctx, orderKey(o.OrderNo), val, c.ttl).Err(); err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}

// Delete 删除缓存
func (c *OrderCache) Delete(ctx context.Context, orderNo string) error {
	if err := c.client.Del(ctx, orderKey(orderNo)).Err(); err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}
