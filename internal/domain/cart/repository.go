package cart

import (
	"context"
)

// Repository 购物车仓储接口
type Repository interface {
	// FindItem 查找用户购物车中某个商品的明细,不存在时返回(nil, nil)
	FindItem(ctx context.Context, userID, productID uint) (*Item, error)

	// Save 新增或更新明细
	Save(ctx context.Context, item *Item) error

	// ListByUserID 用户购物车明细(按加入时间排序)
	ListByUserID(ctx context.Context, userID uint) ([]*Item, error)

	// ClearByUserID 清空购物车
	ClearByUserID(ctx context.Context, userID uint) error
}
