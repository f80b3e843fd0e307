package order

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/domain/cart"
	"github.com/xiebiao/meatshop/internal/domain/order"
	"github.com/xiebiao/meatshop/internal/domain/product"
	"github.com/xiebiao/meatshop/internal/domain/user"
	"github.com/xiebiao/meatshop/pkg/clock"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/logger"
	"github.com/xiebiao/meatshop/pkg/metrics"
	"github.com/xiebiao/meatshop/pkg/tracing"
)

const tracerName = "meatshop/application/order"

// CreateOrderUseCase 购物车下单
//
// 一次尝试 = 一个事务：
//  1. 校验用户（存在、未封禁）
//  2. 读取购物车（不能为空）
//  3. 按商品ID顺序 SELECT FOR UPDATE 锁定商品，检查可售
//  4. 分配订单号（锁定当天最大订单号所在行）
//  5. 按加入购物车时的价格计算金额，写入订单和明细
//  6. 清空购物车
//
// 订单号唯一索引冲突、死锁、锁等待超时会导致整个事务回滚，
// 重新执行整个事务，最多maxAttempts次。被回滚的尝试只会留下序号空洞。
type CreateOrderUseCase struct {
	txManager   TxManager
	users       user.Service
	carts       cart.Repository
	products    product.Repository
	orders      order.Repository
	allocator   *order.Allocator
	cache       OrderCache
	publisher   EventPublisher
	clock       clock.Clock
	maxAttempts int
	log         *zap.Logger
}

// NewCreateOrderUseCase 创建下单用例
// clk决定"当天"：订单号日期段取clk.Now()所在时区的日期
func NewCreateOrderUseCase(
	txManager TxManager,
	users user.Service,
	carts cart.Repository,
	products product.Repository,
	orders order.Repository,
	cache OrderCache,
	publisher EventPublisher,
	clk clock.Clock,
	maxAttempts int,
	log *zap.Logger,
) *CreateOrderUseCase {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CreateOrderUseCase{
		txManager:   txManager,
		users:       users,
		carts:       carts,
		products:    products,
		orders:      orders,
		allocator:   order.NewAllocator(orders),
		cache:       cache,
		publisher:   publisher,
		clock:       clk,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	UserID        uint // 从JWT中提取
	Address       string
	Phone         string
	DeliveryNotes string
	PaymentMethod string // card/cash/transfer
	PaymentStatus string // 空或pending/paid
}

// Execute 执行下单
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*OrderDTO, error) {
	log := logger.FromContext(ctx, uc.log).With(zap.Uint("user_id", req.UserID))

	// 参数校验在任何I/O之前完成
	delivery, err := order.NewDelivery(req.Address, req.Phone, req.DeliveryNotes)
	if err != nil {
		metrics.RecordOrderFailed("validation")
		return nil, err
	}
	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		metrics.RecordOrderFailed("validation")
		return nil, err
	}
	payStatus, err := order.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		metrics.RecordOrderFailed("validation")
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.Int("user.id", int(req.UserID)))

	done := metrics.OrderStarted()
	defer done()
	start := time.Now()

	var created *order.Order
	for attempt := 1; ; attempt++ {
		created, err = uc.attempt(ctx, req.UserID, delivery, method, payStatus, log)
		if err == nil {
			break
		}
		if !isRetryable(err) {
			tracing.RecordError(span, err)
			metrics.RecordOrderFailed(failureReason(err))
			return nil, err
		}
		if attempt >= uc.maxAttempts {
			log.Error("下单重试次数用尽", zap.Int("attempts", attempt), zap.Error(err))
			tracing.RecordError(span, err)
			metrics.RecordOrderFailed("retry_exhausted")
			return nil, apperrors.WithCause(order.ErrOrderRetryExhausted, err)
		}

		metrics.RecordAllocationRetry()
		log.Warn("下单冲突，重试", zap.Int("attempt", attempt), zap.Error(err))
	}

	span.SetAttributes(attribute.String("order.no", created.OrderNo))
	metrics.RecordOrderCreated(time.Since(start))
	log.Info("订单创建成功", zap.String("order_no", created.OrderNo), zap.Int64("total", created.Total))

	uc.afterCommit(ctx, created, log)
	return toOrderDTO(created, uc.clock.Now().Location()), nil
}

// attempt 单次事务
func (uc *CreateOrderUseCase) attempt(
	ctx context.Context,
	userID uint,
	delivery order.Delivery,
	method order.PaymentMethod,
	payStatus order.PaymentStatus,
	log *zap.Logger,
) (*order.Order, error) {
	var result *order.Order

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.users.GetActiveUser(txCtx, userID); err != nil {
			return err
		}

		cartItems, err := uc.carts.ListByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return order.ErrEmptyCart
		}

		products, err := uc.lockProducts(txCtx, cartItems)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		allocation, err := uc.mint(txCtx, now, log)
		if err != nil {
			return err
		}

		items := make([]order.OrderItem, len(cartItems))
		for i, ci := range cartItems {
			p := products[ci.ProductID]
			items[i] = order.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				ProductUnit: p.Unit,
				Price:       ci.PriceAtAdd,
				Quantity:    ci.Quantity,
			}
		}

		o := order.NewOrder(allocation.Number.String(), userID, items, delivery, method, payStatus, now.UTC())
		if err := uc.orders.Create(txCtx, o); err != nil {
			return err
		}

		if err := uc.carts.ClearByUserID(txCtx, userID); err != nil {
			return err
		}

		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockProducts 按商品ID升序加锁，所有事务加锁顺序一致，减少死锁
func (uc *CreateOrderUseCase) lockProducts(ctx context.Context, items []*cart.Item) (map[uint]*product.Product, error) {
	ids := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[uint]*product.Product, len(ids))
	for _, id := range ids {
		p, err := uc.products.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, product.ErrProductNotFound) {
				return nil, apperrors.WithCause(product.ErrProductUnavailable, err)
			}
			return nil, err
		}
		if !p.CanBeOrdered() {
			return nil, product.ErrProductUnavailable
		}
		locked[id] = p
	}
	return locked, nil
}

// mint 分配订单号，结果类型写日志和指标
func (uc *CreateOrderUseCase) mint(ctx context.Context, now time.Time, log *zap.Logger) (order.Allocation, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AllocateOrderNumber")
	defer span.End()

	allocation, err := uc.allocator.Next(ctx, now)
	if err != nil {
		tracing.RecordError(span, err)
		if errors.Is(err, order.ErrSequenceExhausted) {
			log.Error("当日订单号已用尽", zap.String("date", order.DayPrefix(now)))
		}
		return order.Allocation{}, err
	}

	outcome := allocation.Outcome.String()
	metrics.RecordOrderNumberMinted(outcome)
	span.SetAttributes(
		attribute.String("order.no", allocation.Number.String()),
		attribute.String("allocation.outcome", outcome),
	)

	if allocation.Outcome == order.SeedFallback {
		log.Warn("历史订单号无法解析，序号从1开始",
			zap.String("seed", allocation.Seed),
			zap.String("order_no", allocation.Number.String()))
	}
	return allocation, nil
}

func (uc *CreateOrderUseCase) afterCommit(ctx context.Context, o *order.Order, log *zap.Logger) {
	if err := uc.cache.Delete(ctx, o.OrderNo); err != nil {
		log.Warn("删除订单缓存失败", zap.String("order_no", o.OrderNo), zap.Error(err))
	}
	if err := uc.publisher.OrderCreated(ctx, o); err != nil {
		log.Warn("发布下单事件失败", zap.String("order_no", o.OrderNo), zap.Error(err))
	}
}

// isRetryable 订单号冲突或事务冲突时重试整个事务
func isRetryable(err error) bool {
	return errors.Is(err, order.ErrDuplicateOrderNo) || errors.Is(err, apperrors.ErrTxConflict)
}

// failureReason 指标标签
func failureReason(err error) string {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, product.ErrProductUnavailable):
		return "unavailable"
	case errors.Is(err, order.ErrSequenceExhausted):
		return "sequence_exhausted"
	case errors.Is(err, user.ErrUserBlocked), errors.Is(err, user.ErrUserNotFound):
		return "user"
	default:
		return "internal"
	}
}
