package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
type Repository interface {
	SeedSource

	// Create 创建订单(包含订单明细)
	// 订单号冲突时返回ErrDuplicateOrderNo
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// LockByOrderNo 根据订单号查找并锁定订单(SELECT FOR UPDATE)
	LockByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// Update 更新订单状态及相关时间戳
	Update(ctx context.Context, order *Order) error

	// ListByUserID 查询用户的订单列表(分页,按创建时间倒序)
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)
}
