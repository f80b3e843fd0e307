package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/domain/order"
	"github.com/xiebiao/meatshop/pkg/clock"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

// placeOrder 通过下单用例生成一笔订单
func placeOrder(t *testing.T, f *fixture, userID uint) string {
	t.Helper()
	f.addCustomer(userID)
	dto, err := f.uc.Execute(context.Background(), validRequest(userID))
	require.NoError(t, err)
	return dto.OrderNo
}

func TestGetOrder(t *testing.T) {
	f := newFixture(3)
	orderNo := placeOrder(t, f, 1)
	uc := NewGetOrderUseCase(f.store, f.cache, msk, zap.NewNop())

	t.Run("格式错误直接拒绝", func(t *testing.T) {
		gets, finds := f.cache.gets, f.store.findCalls
		for _, no := range []string{"", "ORD-2025-0001", "ORD-20250230-0001", "ord-20251021-0001"} {
			_, err := uc.Execute(context.Background(), GetOrderRequest{OrderNo: no, UserID: 1})
			assert.ErrorIs(t, err, order.ErrInvalidOrderNo, no)
		}
		assert.Equal(t, gets, f.cache.gets, "不应访问缓存")
		assert.Equal(t, finds, f.store.findCalls, "不应访问数据库")
	})

	t.Run("本人查询并回填缓存", func(t *testing.T) {
		dto, err := uc.Execute(context.Background(), GetOrderRequest{OrderNo: orderNo, UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, orderNo, dto.OrderNo)
		assert.Len(t, dto.Items, 2)

		finds := f.store.findCalls
		_, err = uc.Execute(context.Background(), GetOrderRequest{OrderNo: orderNo, UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, finds, f.store.findCalls, "第二次应命中缓存")
	})

	t.Run("他人订单", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), GetOrderRequest{OrderNo: orderNo, UserID: 2})
		assert.ErrorIs(t, err, order.ErrForbidden)

		dto, err := uc.Execute(context.Background(), GetOrderRequest{OrderNo: orderNo, UserID: 2, IsAdmin: true})
		require.NoError(t, err)
		assert.Equal(t, orderNo, dto.OrderNo)
	})

	t.Run("不存在", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), GetOrderRequest{OrderNo: "ORD-20251021-0777", UserID: 1})
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("缓存故障时查库", func(t *testing.T) {
		f.cache.getErr = apperrors.WithCause(apperrors.ErrRedisError, errors.New("i/o timeout"))
		defer func() { f.cache.getErr = nil }()

		dto, err := uc.Execute(context.Background(), GetOrderRequest{OrderNo: orderNo, UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, orderNo, dto.OrderNo)
	})
}

func TestListOrders(t *testing.T) {
	f := newFixture(3)
	for i := 0; i < 3; i++ {
		placeOrder(t, f, 1)
	}
	placeOrder(t, f, 2)

	uc := NewListOrdersUseCase(f.store, msk)

	resp, err := uc.Execute(context.Background(), ListOrdersRequest{UserID: 1, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.List, 2)
	assert.Equal(t, "ORD-20251021-0003", resp.List[0].OrderNo)
	assert.Equal(t, 3, resp.List[0].ItemCount)

	resp, err = uc.Execute(context.Background(), ListOrdersRequest{UserID: 1, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, maxPageSize, resp.PageSize)
	assert.Len(t, resp.List, 3)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(3)
	orderNo := placeOrder(t, f, 1)
	later := clock.NewFixed(time.Date(2025, 10, 21, 15, 0, 0, 0, msk))
	uc := NewUpdateStatusUseCase(f.store, f.store, f.cache, f.publisher, later, zap.NewNop())

	t.Run("非管理员", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), UpdateStatusRequest{OrderNo: orderNo, Status: "confirmed"})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("确认订单", func(t *testing.T) {
		dto, err := uc.Execute(context.Background(), UpdateStatusRequest{OrderNo: orderNo, Status: "confirmed", IsAdmin: true})
		require.NoError(t, err)
		assert.Equal(t, "confirmed", dto.Status)
		assert.Equal(t, "2025-10-21 15:00:00", dto.ConfirmedAt)
		assert.Equal(t, []string{"pending->confirmed"}, f.publisher.changed)
		assert.Contains(t, f.cache.deletes, orderNo)

		stored, err := f.store.FindByOrderNo(context.Background(), orderNo)
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusConfirmed, stored.Status)
	})

	t.Run("非法流转", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), UpdateStatusRequest{OrderNo: orderNo, Status: "delivered", IsAdmin: true})
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

		_, err = uc.Execute(context.Background(), UpdateStatusRequest{OrderNo: orderNo, Status: "lost", IsAdmin: true})
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("订单号错误", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), UpdateStatusRequest{OrderNo: "ORD-1", Status: "confirmed", IsAdmin: true})
		assert.ErrorIs(t, err, order.ErrInvalidOrderNo)
	})
}

func TestInspectOrderNumber(t *testing.T) {
	r := InspectOrderNumber("ORD-20240229-0123")
	assert.True(t, r.Valid)
	assert.Equal(t, "2024-02-29", r.IssueDate)
	assert.Equal(t, 123, r.Sequence)

	for _, no := range []string{"", "ORD-20230229-0001", "ORD-20251021-0000", "ORD-20251021-10000", "INV-20251021-0001"} {
		r := InspectOrderNumber(no)
		assert.False(t, r.Valid, no)
		assert.Empty(t, r.IssueDate, no)
	}
}
