// Package messaging 订单事件（RabbitMQ）
//
// 事件只携带订单号、用户和金额等非敏感字段，收货手机号和地址不出库。
package messaging

import (
	"time"

	"github.com/xiebiao/meatshop/internal/domain/order"
)

// 路由键
const (
	RoutingKeyOrderCreated       = "order.created"
	RoutingKeyOrderStatusChanged = "order.status_changed"
)

// OrderCreatedEvent 下单成功
type OrderCreatedEvent struct {
	OrderNo       string    `json:"order_no"`
	UserID        uint      `json:"user_id"`
	Total         int64     `json:"total"`
	ItemCount     int       `json:"item_count"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderStatusChangedEvent 订单状态变化
type OrderStatusChangedEvent struct {
	OrderNo   string    `json:"order_no"`
	UserID    uint      `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

// NewOrderCreatedEvent 从订单构造事件
func NewOrderCreatedEvent(o *order.Order) OrderCreatedEvent {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return OrderCreatedEvent{
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		Total:         o.Total,
		ItemCount:     count,
		PaymentMethod: string(o.PaymentMethod),
		CreatedAt:     o.CreatedAt,
	}
}

// NewOrderStatusChangedEvent 从订单构造状态变化事件
func NewOrderStatusChangedEvent(o *order.Order, from order.OrderStatus) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		OrderNo:   o.OrderNo,
		UserID:    o.UserID,
		From:      string(from),
		To:        string(o.Status),
		ChangedAt: o.UpdatedAt,
	}
}
