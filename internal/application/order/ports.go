package order

import (
	"context"

	"github.com/xiebiao/meatshop/internal/domain/order"
)

// TxManager 事务管理（*mysql.TxManager实现）
// fn内使用传入的ctx访问仓储，所有操作在同一事务内
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 订单事件（messaging.OrderEventPublisher / NoopPublisher实现）
// 在事务提交后调用，失败只记录日志，不影响订单本身
type EventPublisher interface {
	OrderCreated(ctx context.Context, o *order.Order) error
	OrderStatusChanged(ctx context.Context, o *order.Order, from order.OrderStatus) error
}

// OrderCache 订单详情缓存（redis.OrderCache实现）
// Get未命中返回(nil, nil)
type OrderCache interface {
	Get(ctx context.Context, orderNo string) (*order.Order, error)
	Set(ctx context.Context, o *order.Order) error
	Delete(ctx context.Context, orderNo string) error
}
