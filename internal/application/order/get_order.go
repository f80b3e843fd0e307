package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/domain/order"
	"github.com/xiebiao/meatshop/pkg/logger"
)

// GetOrderUseCase 按订单号查询订单详情（Cache-Aside）
type GetOrderUseCase struct {
	orders order.Repository
	cache  OrderCache
	loc    *time.Location
	log    *zap.Logger
}

// NewGetOrderUseCase 创建查询用例
func NewGetOrderUseCase(orders order.Repository, cache OrderCache, loc *time.Location, log *zap.Logger) *GetOrderUseCase {
	return &GetOrderUseCase{orders: orders, cache: cache, loc: loc, log: log}
}

// GetOrderRequest 查询请求
type GetOrderRequest struct {
	OrderNo string
	UserID  uint
	IsAdmin bool
}

// Execute 查询订单
// 订单号格式不合法时直接拒绝，不查缓存也不查库；非管理员只能查看自己的订单
func (uc *GetOrderUseCase) Execute(ctx context.Context, req GetOrderRequest) (*OrderDTO, error) {
	if !order.ValidateOrderNumber(req.OrderNo) {
		return nil, order.ErrInvalidOrderNo
	}
	log := logger.FromContext(ctx, uc.log).With(zap.String("order_no", req.OrderNo))

	o, err := uc.cache.Get(ctx, req.OrderNo)
	if err != nil {
		// 缓存故障降级为直接查库
		log.Warn("读取订单缓存失败", zap.Error(err))
		o = nil
	}

	if o == nil {
		o, err = uc.orders.FindByOrderNo(ctx, req.OrderNo)
		if err != nil {
			return nil, err
		}
		if err := uc.cache.Set(ctx, o); err != nil {
			log.Warn("写入订单缓存失败", zap.Error(err))
		}
	}

	if !req.IsAdmin && !o.IsOwnedBy(req.UserID) {
		return nil, order.ErrForbidden
	}
	return toOrderDTO(o, uc.loc), nil
}
