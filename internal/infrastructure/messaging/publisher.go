package messaging

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/domain/order"
	"github.com/xiebiao/meatshop/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/metrics"
)

// Broker 消息发布（*mq.Publisher实现）
type Broker interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Exchange() string
}

// OrderEventPublisher 订单事件发布器
// 通过熔断器调用Broker：RabbitMQ不可用时快速失败，不拖慢下单
type OrderEventPublisher struct {
	broker  Broker
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	log     *zap.Logger
}

// NewOrderEventPublisher 创建订单事件发布器
func NewOrderEventPublisher(broker Broker, log *zap.Logger) *OrderEventPublisher {
	breaker := circuitbreaker.NewInstrumented(circuitbreaker.Settings{
		Name:     "rabbitmq",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("熔断器状态变化", zap.String("name", name), zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})
	return &OrderEventPublisher{
		broker:  broker,
		breaker: breaker,
		timeout: 3 * time.Second,
		log:     log,
	}
}

// OrderCreated 发布下单事件
func (p *OrderEventPublisher) OrderCreated(ctx context.Context, o *order.Order) error {
	return p.publish(ctx, RoutingKeyOrderCreated, NewOrderCreatedEvent(o))
}

// OrderStatusChanged 发布状态变化事件
func (p *OrderEventPublisher) OrderStatusChanged(ctx context.Context, o *order.Order, from order.OrderStatus) error {
	return p.publish(ctx, RoutingKeyOrderStatusChanged, NewOrderStatusChangedEvent(o, from))
}

func (p *OrderEventPublisher) publish(ctx context.Context, routingKey string, event interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.breaker.Execute(func() error {
		return p.broker.Publish(ctx, routingKey, event)
	})
	if err != nil {
		return apperrors.WithCause(apperrors.ErrBrokerError, err)
	}

	metrics.RecordMessagePublished(p.broker.Exchange(), routingKey)
	return nil
}

// NoopPublisher RabbitMQ未启用时使用，只记录日志
type NoopPublisher struct {
	log *zap.Logger
}

// NewNoopPublisher 创建空发布器
func NewNoopPublisher(log *zap.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

// OrderCreated 仅记录日志
func (p *NoopPublisher) OrderCreated(_ context.Context, o *order.Order) error {
	p.log.Debug("消息队列未启用，跳过下单事件", zap.String("order_no", o.OrderNo))
	return nil
}

// OrderStatusChanged 仅记录日志
func (p *NoopPublisher) OrderStatusChanged(_ context.Context, o *order.Order, from order.OrderStatus) error {
	p.log.Debug("消息队列未启用，跳过状态变化事件", zap.String("order_no", o.OrderNo),
		zap.String("from", string(from)), zap.String("to", string(o.Status)))
	return nil
}
