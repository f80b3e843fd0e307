package product

import (
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

// 商品领域错误定义
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")

	// ErrProductUnavailable 商品已下架或缺货
	ErrProductUnavailable = apperrors.New(apperrors.ErrCodeProductUnavailable, "商品暂不可售")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")
)
