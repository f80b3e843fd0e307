// Package cache 进程内缓存（商品目录等读多写少的数据）
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/allegro/bigcache/v3"

	"github.com/xiebiao/meatshop/internal/infrastructure/config"
)

// Local 基于bigcache的本地缓存，值以JSON存储
type Local struct {
	store *bigcache.BigCache
}

// NewLocal 创建本地缓存
func NewLocal(ctx context.Context, cfg *config.Config) (*Local, error) {
	bc := bigcache.DefaultConfig(cfg.Cache.LifeWindow)
	bc.HardMaxCacheSize = cfg.Cache.HardMaxCacheMB
	bc.Verbose = false

	store, err := bigcache.New(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("创建本地缓存失败: %w", err)
	}
	return &Local{store: store}, nil
}

// GetJSON 读取并反序列化，未命中返回false
func (l *Local) GetJSON(key string, dest interface{}) (bool, error) {
	b, err := l.store.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		_ = l.store.Delete(key)
		return false, nil
	}
	return true, nil
}

// SetJSON 序列化后写入
func (l *Local) SetJSON(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return l.store.Set(key, b)
}

// Reset 清空缓存（商品变更后调用）
func (l *Local) Reset() error {
	return l.store.Reset()
}

// Close 停止后台清理协程
func (l *Local) Close() error {
	return l.store.Close()
}
