package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/domain/order"
	"github.com/xiebiao/meatshop/pkg/clock"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/logger"
	"github.com/xiebiao/meatshop/pkg/metrics"
)

// UpdateStatusUseCase 管理员变更订单状态
type UpdateStatusUseCase struct {
	txManager TxManager
	orders    order.Repository
	cache     OrderCache
	publisher EventPublisher
	clock     clock.Clock
	log       *zap.Logger
}

// NewUpdateStatusUseCase 创建状态变更用例
func NewUpdateStatusUseCase(
	txManager TxManager,
	orders order.Repository,
	cache OrderCache,
	publisher EventPublisher,
	clk clock.Clock,
	log *zap.Logger,
) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		txManager: txManager,
		orders:    orders,
		cache:     cache,
		publisher: publisher,
		clock:     clk,
		log:       log,
	}
}

// UpdateStatusRequest 状态变更请求
type UpdateStatusRequest struct {
	OrderNo string
	Status  string
	IsAdmin bool
}

// Execute 锁定订单行后按状态机流转
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, req UpdateStatusRequest) (*OrderDTO, error) {
	if !req.IsAdmin {
		return nil, apperrors.ErrForbidden
	}
	if !order.ValidateOrderNumber(req.OrderNo) {
		return nil, order.ErrInvalidOrderNo
	}
	target := order.OrderStatus(req.Status)
	if !target.Valid() {
		return nil, order.ErrInvalidStatusTransition
	}

	var (
		updated *order.Order
		from    order.OrderStatus
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orders.LockByOrderNo(txCtx, req.OrderNo)
		if err != nil {
			return err
		}
		from = o.Status
		if err := o.TransitionTo(target, uc.clock.Now().UTC()); err != nil {
			return err
		}
		if err := uc.orders.Update(txCtx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, uc.log).With(zap.String("order_no", req.OrderNo))
	log.Info("订单状态变更", zap.String("from", string(from)), zap.String("to", string(target)))
	metrics.RecordStatusTransition(string(target))

	if err := uc.cache.Delete(ctx, req.OrderNo); err != nil {
		log.Warn("删除订单缓存失败", zap.Error(err))
	}
	if err := uc.publisher.OrderStatusChanged(ctx, updated, from); err != nil {
		log.Warn("发布状态变化事件失败", zap.Error(err))
	}

	return toOrderDTO(updated, uc.clock.Now().Location()), nil
}
