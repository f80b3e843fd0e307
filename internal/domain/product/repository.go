package product

import (
	"context"
)

// Repository 商品仓储接口(依赖倒置原则)
type Repository interface {
	// FindByID 根据ID查找商品
	FindByID(ctx context.Context, id uint) (*Product, error)

	// LockByID 悲观锁查询商品(用于下单时锁定商品行)
	// 使用SELECT FOR UPDATE,下单事务内商品不会被下架或改价
	LockByID(ctx context.Context, id uint) (*Product, error)

	// List 分页查询上架商品
	List(ctx context.Context, params ListParams) ([]*Product, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page       int  // 页码(从1开始)
	PageSize   int  // 每页数量
	CategoryID uint // 0表示不限分类
}
